package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranahq/catalog-api/internal/models"
	"github.com/kiranahq/catalog-api/internal/service"
	"github.com/kiranahq/catalog-api/internal/utils"
)

// --- Mock admin ---

type mockAdmin struct {
	payload  *service.ProductPayload
	category *models.Category
	err      error

	lastInput  service.CreateProductInput
	lastName   string
	lastParent *int64
}

func (m *mockAdmin) CreateProduct(_ context.Context, in service.CreateProductInput) (*service.ProductPayload, error) {
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	return m.payload, nil
}

func (m *mockAdmin) CreateCategory(_ context.Context, name string, parentID *int64) (*models.Category, error) {
	m.lastName = name
	m.lastParent = parentID
	if m.err != nil {
		return nil, m.err
	}
	return m.category, nil
}

func newAdminRouter(admin AdminProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAdminHandler(admin)
	router.POST("/api/products", h.CreateProduct)
	router.POST("/api/categories", h.CreateCategory)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestCreateProductAcceptsBothImageShapes(t *testing.T) {
	admin := &mockAdmin{payload: &service.ProductPayload{ID: 1, Slug: "red-shoes"}}
	router := newAdminRouter(admin)

	body := `{
		"title": "Red Shoes",
		"price": "10.50",
		"images": [
			"aGVsbG8=",
			{"data": "d29ybGQ=", "mime_type": "image/png"}
		]
	}`
	rec := postJSON(t, router, "/api/products", body)

	assert.Equal(t, 201, rec.Code)
	images := admin.lastInput.Images
	require.Len(t, images, 2)
	assert.Equal(t, service.ImageInput{Data: "aGVsbG8=", MimeType: "image/jpeg"}, images[0])
	assert.Equal(t, service.ImageInput{Data: "d29ybGQ=", MimeType: "image/png"}, images[1])
}

func TestCreateProductForwardsFields(t *testing.T) {
	admin := &mockAdmin{payload: &service.ProductPayload{ID: 1}}
	router := newAdminRouter(admin)

	body := `{
		"title": "Red Shoes",
		"description": "Bright red",
		"price": 10.5,
		"currency": "EUR",
		"brand_id": 3,
		"category_ids": [7, 9]
	}`
	rec := postJSON(t, router, "/api/products", body)

	assert.Equal(t, 201, rec.Code)
	in := admin.lastInput
	assert.Equal(t, "Red Shoes", in.Title)
	assert.Equal(t, "Bright red", in.Description)
	assert.Equal(t, "10.5", in.Price.String())
	assert.Equal(t, "EUR", in.Currency)
	require.NotNil(t, in.BrandID)
	assert.Equal(t, int64(3), *in.BrandID)
	assert.Equal(t, []int64{7, 9}, in.CategoryIDs)
}

func TestCreateProductRejectsMalformedBody(t *testing.T) {
	admin := &mockAdmin{}
	router := newAdminRouter(admin)

	rec := postJSON(t, router, "/api/products", `{"title": `)

	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(t, rec))
}

func TestCreateProductMapsServiceErrors(t *testing.T) {
	admin := &mockAdmin{err: fmt.Errorf("%w: title required", utils.ErrInvalidArgument)}
	router := newAdminRouter(admin)

	rec := postJSON(t, router, "/api/products", `{"title": ""}`)

	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(t, rec))
}

func TestCreateCategory(t *testing.T) {
	admin := &mockAdmin{category: &models.Category{ID: 7, Name: "Footwear"}}
	router := newAdminRouter(admin)

	rec := postJSON(t, router, "/api/categories", `{"name": "Footwear", "parent_id": 3}`)

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "Footwear", admin.lastName)
	require.NotNil(t, admin.lastParent)
	assert.Equal(t, int64(3), *admin.lastParent)

	var cat models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	assert.Equal(t, int64(7), cat.ID)
}

func TestCreateCategoryRejectsBrokenAncestry(t *testing.T) {
	admin := &mockAdmin{err: fmt.Errorf("%w: parent chain does not terminate", utils.ErrInvalidArgument)}
	router := newAdminRouter(admin)

	rec := postJSON(t, router, "/api/categories", `{"name": "Loop", "parent_id": 1}`)

	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(t, rec))
}
