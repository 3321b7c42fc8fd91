package domain

import "fmt"

// SortField names a product field the list can be ordered by.
type SortField string

const (
	SortByID           SortField = "id"
	SortByGvtID        SortField = "gvtId"
	SortByName         SortField = "name"
	SortByProductTitle SortField = "productTitle"
)

// SortOrder is the list direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchField names a text field the search term is matched against.
type SearchField string

const (
	SearchFieldName         SearchField = "name"
	SearchFieldProductTitle SearchField = "productTitle"
)

// ValidSortFields returns the accepted sort fields.
func ValidSortFields() []SortField {
	return []SortField{SortByID, SortByGvtID, SortByName, SortByProductTitle}
}

// IsValidSortField checks whether s is an accepted sort field.
func IsValidSortField(s string) bool {
	for _, f := range ValidSortFields() {
		if string(f) == s {
			return true
		}
	}
	return false
}

// IsValidSortOrder checks whether s is asc or desc.
func IsValidSortOrder(s string) bool {
	return s == string(SortAsc) || s == string(SortDesc)
}

// ParseSearchFields converts configured field names, rejecting unknown ones.
func ParseSearchFields(names []string) ([]SearchField, error) {
	fields := make([]SearchField, 0, len(names))
	for _, n := range names {
		switch f := SearchField(n); f {
		case SearchFieldName, SearchFieldProductTitle:
			fields = append(fields, f)
		default:
			return nil, fmt.Errorf("unknown search field %q", n)
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one search field is required")
	}
	return fields, nil
}
