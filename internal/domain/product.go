package domain

import "strings"

// TypenameProductInfo is the fixed type tag carried by every product record.
const TypenameProductInfo = "ProductInfo"

// Product is a gift-card or voucher offering in the catalog. JSON names are
// both the API wire format and the on-disk format.
type Product struct {
	ID                          int64   `json:"id"`
	Name                        string  `json:"name"`
	GvtID                       int64   `json:"gvtId"`
	ProductTagline              string  `json:"productTagline"`
	ShortDescription            string  `json:"shortDescription"`
	LongDescription             string  `json:"longDescription"`
	LogoLocation                string  `json:"logoLocation,omitempty"`
	ProductURL                  string  `json:"productUrl"`
	VoucherTypeName             string  `json:"voucherTypeName"`
	OrderURL                    string  `json:"orderUrl"`
	VariableDenomPriceMinAmount *string `json:"variableDenomPriceMinAmount,omitempty"`
	VariableDenomPriceMaxAmount *string `json:"variableDenomPriceMaxAmount,omitempty"`
	ProductTitle                string  `json:"productTitle"`
	Typename                    string  `json:"__typename"`
}

// Clone returns a copy that shares no pointers with p.
func (p Product) Clone() Product {
	c := p
	c.VariableDenomPriceMinAmount = cloneString(p.VariableDenomPriceMinAmount)
	c.VariableDenomPriceMaxAmount = cloneString(p.VariableDenomPriceMaxAmount)
	return c
}

// SearchValue returns the text of the given searchable field.
func (p Product) SearchValue(f SearchField) string {
	switch f {
	case SearchFieldProductTitle:
		return p.ProductTitle
	default:
		return p.Name
	}
}

// Matches reports whether any of the fields contains term, ignoring case.
// An empty term matches every product.
func (p Product) Matches(term string, fields []SearchField) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(p.SearchValue(f)), needle) {
			return true
		}
	}
	return false
}

// ProductPatch carries the fields of a partial update. Nil means "leave unchanged".
// The id and type tag are not patchable.
type ProductPatch struct {
	Name                        *string
	GvtID                       *int64
	ProductTagline              *string
	ShortDescription            *string
	LongDescription             *string
	LogoLocation                *string
	ProductURL                  *string
	VoucherTypeName             *string
	OrderURL                    *string
	VariableDenomPriceMinAmount *string
	VariableDenomPriceMaxAmount *string
	ProductTitle                *string
}

// Apply merges the supplied fields into dst.
func (p ProductPatch) Apply(dst *Product) {
	setString(&dst.Name, p.Name)
	if p.GvtID != nil {
		dst.GvtID = *p.GvtID
	}
	setString(&dst.ProductTagline, p.ProductTagline)
	setString(&dst.ShortDescription, p.ShortDescription)
	setString(&dst.LongDescription, p.LongDescription)
	setString(&dst.LogoLocation, p.LogoLocation)
	setString(&dst.ProductURL, p.ProductURL)
	setString(&dst.VoucherTypeName, p.VoucherTypeName)
	setString(&dst.OrderURL, p.OrderURL)
	setString(&dst.ProductTitle, p.ProductTitle)
	if p.VariableDenomPriceMinAmount != nil {
		dst.VariableDenomPriceMinAmount = cloneString(p.VariableDenomPriceMinAmount)
	}
	if p.VariableDenomPriceMaxAmount != nil {
		dst.VariableDenomPriceMaxAmount = cloneString(p.VariableDenomPriceMaxAmount)
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p == ProductPatch{}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
