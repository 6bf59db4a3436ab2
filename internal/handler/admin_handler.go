package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kiranahq/catalog-api/internal/models"
	"github.com/kiranahq/catalog-api/internal/service"
	"github.com/kiranahq/catalog-api/internal/utils"
)

// AdminProvider is the write surface the admin handler consumes.
type AdminProvider interface {
	CreateProduct(ctx context.Context, in service.CreateProductInput) (*service.ProductPayload, error)
	CreateCategory(ctx context.Context, name string, parentID *int64) (*models.Category, error)
}

// AdminHandler handles catalog write endpoints.
type AdminHandler struct {
	admin AdminProvider
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(admin AdminProvider) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// imageField accepts the two image shapes clients send: an object with
// explicit media type, or a bare base64 string that defaults to JPEG. The
// variant is resolved here so only the normalized form enters the service.
type imageField struct {
	Data     string
	MimeType string
}

func (f *imageField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var data string
		if err := json.Unmarshal(b, &data); err != nil {
			return err
		}
		f.Data = data
		f.MimeType = "image/jpeg"
		return nil
	}

	var obj struct {
		Data     string `json:"data"`
		MimeType string `json:"mime_type"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	f.Data = obj.Data
	f.MimeType = obj.MimeType
	return nil
}

type createProductRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	BrandID     *int64          `json:"brand_id"`
	Images      []imageField    `json:"images"`
	CategoryIDs []int64         `json:"category_ids"`
}

// CreateProduct creates a product and responds with its representation.
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, utils.ErrInvalidArgument.Error(), "invalid request body")
		return
	}

	images := make([]service.ImageInput, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, service.ImageInput{Data: img.Data, MimeType: img.MimeType})
	}

	payload, err := h.admin.CreateProduct(c.Request.Context(), service.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		BrandID:     req.BrandID,
		Images:      images,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	c.JSON(201, payload)
}

type createCategoryRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// CreateCategory creates a category; parents that would break the
// breadcrumb walk are rejected with a client error.
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, utils.ErrInvalidArgument.Error(), "invalid request body")
		return
	}

	category, err := h.admin.CreateCategory(c.Request.Context(), req.Name, req.ParentID)
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	c.JSON(201, category)
}
