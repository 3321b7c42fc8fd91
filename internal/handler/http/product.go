package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	govalidator "github.com/go-playground/validator/v10"

	"github.com/utafrali/giftcard-catalog/internal/domain"
	"github.com/utafrali/giftcard-catalog/internal/repository"
	"github.com/utafrali/giftcard-catalog/internal/service"
	"github.com/utafrali/giftcard-catalog/pkg/httputil"
	"github.com/utafrali/giftcard-catalog/pkg/pagination"
	"github.com/utafrali/giftcard-catalog/pkg/validator"
)

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

const messageBodyTooLarge = "Request body too large"

func init() {
	validator.RegisterStructValidation(priceRangeRule, CreateProductRequest{}, UpdateProductRequest{})
}

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
// Pointer fields must be present but may be empty.
type CreateProductRequest struct {
	Name                        string  `json:"name" validate:"required,min=1,max=120"`
	GvtID                       *int64  `json:"gvtId" validate:"required,gte=1"`
	ProductTagline              *string `json:"productTagline" validate:"required"`
	ShortDescription            *string `json:"shortDescription" validate:"required,max=2000"`
	LongDescription             *string `json:"longDescription" validate:"required,max=3000"`
	LogoLocation                string  `json:"logoLocation" validate:"omitempty,url"`
	ProductURL                  string  `json:"productUrl" validate:"required"`
	VoucherTypeName             string  `json:"voucherTypeName" validate:"required"`
	OrderURL                    string  `json:"orderUrl" validate:"required,url"`
	VariableDenomPriceMinAmount *string `json:"variableDenomPriceMinAmount" validate:"omitempty,numeric"`
	VariableDenomPriceMaxAmount *string `json:"variableDenomPriceMaxAmount" validate:"omitempty,numeric"`
	ProductTitle                string  `json:"productTitle" validate:"required"`
	Typename                    string  `json:"__typename" validate:"required,eq=ProductInfo"`
}

func (req CreateProductRequest) toDomain() domain.Product {
	return domain.Product{
		Name:                        req.Name,
		GvtID:                       *req.GvtID,
		ProductTagline:              *req.ProductTagline,
		ShortDescription:            *req.ShortDescription,
		LongDescription:             *req.LongDescription,
		LogoLocation:                req.LogoLocation,
		ProductURL:                  req.ProductURL,
		VoucherTypeName:             req.VoucherTypeName,
		OrderURL:                    req.OrderURL,
		VariableDenomPriceMinAmount: req.VariableDenomPriceMinAmount,
		VariableDenomPriceMaxAmount: req.VariableDenomPriceMaxAmount,
		ProductTitle:                req.ProductTitle,
		Typename:                    req.Typename,
	}
}

// UpdateProductRequest is the JSON request body for updating a product.
// Every field is optional; an id, when sent, must match the path.
type UpdateProductRequest struct {
	ID                          *int64  `json:"id"`
	Name                        *string `json:"name" validate:"omitempty,min=1,max=120"`
	GvtID                       *int64  `json:"gvtId" validate:"omitempty,gte=1"`
	ProductTagline              *string `json:"productTagline"`
	ShortDescription            *string `json:"shortDescription" validate:"omitempty,max=2000"`
	LongDescription             *string `json:"longDescription" validate:"omitempty,max=3000"`
	LogoLocation                *string `json:"logoLocation" validate:"omitempty,url"`
	ProductURL                  *string `json:"productUrl" validate:"omitempty,min=1"`
	VoucherTypeName             *string `json:"voucherTypeName" validate:"omitempty,min=1"`
	OrderURL                    *string `json:"orderUrl" validate:"omitempty,url"`
	VariableDenomPriceMinAmount *string `json:"variableDenomPriceMinAmount" validate:"omitempty,numeric"`
	VariableDenomPriceMaxAmount *string `json:"variableDenomPriceMaxAmount" validate:"omitempty,numeric"`
	ProductTitle                *string `json:"productTitle" validate:"omitempty,min=1"`
	Typename                    *string `json:"__typename" validate:"omitempty,eq=ProductInfo"`
}

func (req UpdateProductRequest) toPatch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:                        req.Name,
		GvtID:                       req.GvtID,
		ProductTagline:              req.ProductTagline,
		ShortDescription:            req.ShortDescription,
		LongDescription:             req.LongDescription,
		LogoLocation:                req.LogoLocation,
		ProductURL:                  req.ProductURL,
		VoucherTypeName:             req.VoucherTypeName,
		OrderURL:                    req.OrderURL,
		VariableDenomPriceMinAmount: req.VariableDenomPriceMinAmount,
		VariableDenomPriceMaxAmount: req.VariableDenomPriceMaxAmount,
		ProductTitle:                req.ProductTitle,
	}
}

// priceRangeRule rejects a minimum amount above the maximum. It only applies
// when both amounts are in the same request.
func priceRangeRule(sl govalidator.StructLevel) {
	var lo, hi *string
	switch req := sl.Current().Interface().(type) {
	case CreateProductRequest:
		lo, hi = req.VariableDenomPriceMinAmount, req.VariableDenomPriceMaxAmount
	case UpdateProductRequest:
		lo, hi = req.VariableDenomPriceMinAmount, req.VariableDenomPriceMaxAmount
	default:
		return
	}
	if !domain.ValidPriceRange(lo, hi) {
		sl.ReportError(lo, "variableDenomPriceMinAmount", "VariableDenomPriceMinAmount", validator.TagPriceRange, "")
	}
}

// blankToNil treats an empty string the same as an absent value.
func blankToNil(s *string) *string {
	if s != nil && strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// decodeBody decodes a size-limited body holding exactly one JSON value into
// dst. It writes the error response itself and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := validator.Decode(r, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.ErrorResponse{Error: messageBodyTooLarge})
			return false
		}
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

// --- Handlers ---

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, fields := pagination.FromRequest(r)
	if fields == nil {
		fields = map[string]string{}
	}

	q := repository.ProductQuery{
		Search:    r.URL.Query().Get("search"),
		SortBy:    domain.SortByID,
		SortOrder: domain.SortAsc,
		Params:    params,
	}

	if v := r.URL.Query().Get("sortBy"); v != "" {
		if domain.IsValidSortField(v) {
			q.SortBy = domain.SortField(v)
		} else {
			fields["sortBy"] = "must be one of: id, gvtId, name, productTitle"
		}
	}
	if v := r.URL.Query().Get("sortOrder"); v != "" {
		if domain.IsValidSortOrder(v) {
			q.SortOrder = domain.SortOrder(v)
		} else {
			fields["sortOrder"] = "must be one of: asc, desc"
		}
	}

	if len(fields) > 0 {
		httputil.WriteDetails(w, fields)
		return
	}

	result, err := h.service.ListProducts(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.VariableDenomPriceMinAmount = blankToNil(req.VariableDenomPriceMinAmount)
	req.VariableDenomPriceMaxAmount = blankToNil(req.VariableDenomPriceMaxAmount)

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req.toDomain())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// UpdateProduct handles PATCH /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.ID != nil && *req.ID != id {
		httputil.WriteDetails(w, map[string]string{"id": "must match the id in the path"})
		return
	}

	req.VariableDenomPriceMinAmount = blankToNil(req.VariableDenomPriceMinAmount)
	req.VariableDenomPriceMaxAmount = blankToNil(req.VariableDenomPriceMaxAmount)

	// An empty logo clears it; only non-empty values are URL-checked.
	clearLogo := req.LogoLocation != nil && *req.LogoLocation == ""
	if clearLogo {
		req.LogoLocation = nil
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	patch := req.toPatch()
	if clearLogo {
		empty := ""
		patch.LogoLocation = &empty
	}

	product, err := h.service.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	result, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
