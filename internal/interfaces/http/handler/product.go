package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/chiclet/backend/internal/application/catalog"
)

// ProductHandler serves the storefront catalog and product administration.
// Storefront routes only see active products.
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List lists active products with filters, sorting and pagination
func (h *ProductHandler) List(c *gin.Context) {
	h.list(c, true)
}

// AdminList lists all products including inactive ones
func (h *ProductHandler) AdminList(c *gin.Context) {
	h.list(c, false)
}

func (h *ProductHandler) list(c *gin.Context, activeOnly bool) {
	var q catalogapp.ProductListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.products.List(c.Request.Context(), q, activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, &page)
}

// Get returns an active product
func (h *ProductHandler) Get(c *gin.Context) {
	h.get(c, true)
}

// AdminGet returns any product
func (h *ProductHandler) AdminGet(c *gin.Context) {
	h.get(c, false)
}

func (h *ProductHandler) get(c *gin.Context, activeOnly bool) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Get(c.Request.Context(), id, activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListCategories returns the distinct categories of active products
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.products.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	h.Success(c, categories)
}

// Create creates a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update applies a partial update
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product with its color variants
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddColor adds a color variant
func (h *ProductHandler) AddColor(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ColorInput
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.products.AddColor(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// RemoveColor removes a color variant
func (h *ProductHandler) RemoveColor(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	colorID, ok := h.uuidParam(c, "color_id")
	if !ok {
		return
	}
	product, err := h.products.RemoveColor(c.Request.Context(), id, colorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Activate publishes a product on the storefront
func (h *ProductHandler) Activate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Deactivate hides a product from the storefront
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// RequestImageUpload returns a presigned PUT URL for a product image
func (h *ProductHandler) RequestImageUpload(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ImageUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	upload, err := h.products.RequestImageUpload(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}
