// internal/adapters/in/http/storefront/handler/catalog_handler.go
package storefrontHandler

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	catdom "storefront/internal/domain/category"
	productdom "storefront/internal/domain/product"
)

// CatalogHandler serves products and categories (public reads, admin writes).
type CatalogHandler struct {
	uc      *usecase.CatalogUsecase
	tracker StreamTracker
}

func NewCatalogHandler(uc *usecase.CatalogUsecase, tracker StreamTracker) *CatalogHandler {
	return &CatalogHandler{uc: uc, tracker: tracker}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/stream", h.streamProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/categories", h.listCategories)
}

// RegisterAdminRoutes expects r to be behind RequireAdmin.
func (h *CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/products", h.createProduct)
	r.Patch("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Put("/products/{id}/stock", h.updateStock)
	r.Post("/products/{id}/images", h.uploadImage)

	r.Post("/categories", h.createCategory)
	r.Delete("/categories/{id}", h.deleteCategory)
}

// ------------------------------------------------------------
// public
// ------------------------------------------------------------

// filterFromQuery reads category, featured, newArrival, bestSeller, q, minPrice,
// maxPrice, inStock, sort and limit.
func filterFromQuery(q url.Values) productdom.Filter {
	return productdom.Filter{
		Category:    strings.TrimSpace(q.Get("category")),
		Featured:    parseBool(q.Get("featured")),
		NewArrival:  parseBool(q.Get("newArrival")),
		BestSeller:  parseBool(q.Get("bestSeller")),
		Search:      strings.TrimSpace(q.Get("q")),
		MinPrice:    parseFloatPtr(q.Get("minPrice")),
		MaxPrice:    parseFloatPtr(q.Get("maxPrice")),
		InStockOnly: parseBool(q.Get("inStock")),
		Sort:        productdom.SortKey(strings.TrimSpace(q.Get("sort"))),
		Limit:       parseIntDefault(q.Get("limit"), 0),
	}
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.uc.ListProducts(r.Context(), filterFromQuery(r.URL.Query()))
	if err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *CatalogHandler) streamProducts(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r.URL.Query())
	serveStream(w, r, "catalog_handler", h.tracker, func(ctx context.Context, fn func([]productdom.Product)) error {
		return h.uc.SubscribeProducts(ctx, f, fn)
	})
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.uc.ListCategories(r.Context())
	if err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	if rows == nil {
		rows = []catdom.Category{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// ------------------------------------------------------------
// admin
// ------------------------------------------------------------

type createProductRequest struct {
	Name               string   `json:"name" validate:"required,max=200"`
	Description        string   `json:"description"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Price              float64  `json:"price" validate:"gte=0"`
	DiscountPercentage float64  `json:"discountPercentage" validate:"gte=0,lte=100"`
	Stock              int      `json:"stock" validate:"gte=0"`
	Images             []string `json:"images" validate:"omitempty,dive,url"`
	IsFeatured         bool     `json:"isFeatured"`
	IsNewArrival       bool     `json:"isNewArrival"`
	IsBestSeller       bool     `json:"isBestSeller"`
	ARModelURL         string   `json:"arModelUrl" validate:"omitempty,url"`
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.uc.CreateProduct(r.Context(), actor(r), productdom.Product{
		Name:               req.Name,
		Description:        req.Description,
		Brand:              req.Brand,
		Category:           req.Category,
		Price:              req.Price,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
		Images:             req.Images,
		IsFeatured:         req.IsFeatured,
		IsNewArrival:       req.IsNewArrival,
		IsBestSeller:       req.IsBestSeller,
		ARModelURL:         req.ARModelURL,
	})
	if err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	log.Printf("[catalog_handler] product created id=%s by=%s", p.ID, maskUID(actor(r).UID))
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var patch productdom.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}
	p, err := h.uc.UpdateProduct(r.Context(), actor(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteProduct(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

func (h *CatalogHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.uc.UpdateStock(r.Context(), actor(r), chi.URLParam(r, "id"), *req.Stock)
	if err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// uploadImage takes the raw image as the request body (Content-Type: image/*).
func (h *CatalogHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, usecase.MaxProductImageBytes+1)
	data, err := io.ReadAll(body)
	if err != nil {
		writeErr(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}
	p, err := h.uc.UploadProductImage(r.Context(), actor(r), chi.URLParam(r, "id"), r.Header.Get("Content-Type"), data)
	if err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.uc.CreateCategory(r.Context(), actor(r), req.Name)
	if err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteCategory(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeUsecaseError(w, "catalog_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
