package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/go-shop-catalog/models"
)

func strPtr(s string) *string { return &s }

func TestHandleGetProduct(t *testing.T) {
	color := models.PropertyObject{ID: 1, Title: "Color", Code: "color", ValueType: models.ValueTypeString}
	weight := models.PropertyObject{ID: 2, Title: "Weight", Code: "weight", ValueType: models.ValueTypeDecimal}

	withImage := newTestProduct("ABC123", "Chair", models.StatusExpected, "12.5")
	withImage.Image = "images/chair.jpg"
	withImage.ImageVariant = models.VariantReady
	withImage.Properties = []models.PropertyValue{
		{PropertyObjectID: 1, PropertyObject: color, ValueString: strPtr("red"), Code: "red"},
		{PropertyObjectID: 2, PropertyObject: weight, ValueDecimal: decimal.NewNullDecimal(decimal.RequireFromString("3.4")), Code: "3-4"},
	}

	pending := newTestProduct("PEND01", "Sofa", models.StatusInStock, "99")
	pending.Image = "images/sofa.png"
	pending.ImageVariant = models.VariantPending

	gif := newTestProduct("GIF001", "Poster", models.StatusInStock, "5")
	gif.Image = "images/poster.gif"

	noImage := newTestProduct("NOIMG1", "Shelf", models.StatusNotProduced, "")

	allMockProducts := []models.Product{withImage, pending, gif, noImage}

	testCases := []struct {
		name               string
		sku                string
		mockRepoSetup      func() *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name: "Success with image variant and properties",
			sku:  "ABC123",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{
					"title": "Chair",
					"sku": "ABC123",
					"price": "12.50",
					"status": "expected",
					"status_label": "expected to arrive",
					"slug": "abc123",
					"image": {"path": "/media/images/chair", "formats": ["jpg", "webp"]},
					"category": {"slug": "furniture", "title": "Furniture"},
					"properties": [
						{"code": "color", "title": "Color", "value_type": "string", "value": "red"},
						{"code": "weight", "title": "Weight", "value_type": "decimal", "value": "3.40"}
					]
				}`, rec.Body.String())
			},
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, "ABC123", repo.lastCalledSKU)
			},
		},
		{
			name: "Pending variant lists only the original format",
			sku:  "PEND01",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				require.NotNil(t, resp.Image)
				assert.Equal(t, []string{"png"}, resp.Image.Formats)
			},
		},
		{
			name: "Non derivable image has its own format only",
			sku:  "GIF001",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				require.NotNil(t, resp.Image)
				assert.Equal(t, "/media/images/poster", resp.Image.Path)
				assert.Equal(t, []string{"gif"}, resp.Image.Formats)
			},
		},
		{
			name: "Product without image or price",
			sku:  "NOIMG1",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Nil(t, resp["image"])
				assert.Nil(t, resp["price"])
				assert.Equal(t, []any{}, resp["properties"])
				assert.NotContains(t, resp, "id")
			},
		},
		{
			name: "Product not found",
			sku:  "NOPE",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "Product not found", errResp["error"])
			},
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, "NOPE", repo.lastCalledSKU)
			},
		},
		{
			name: "Repository internal error",
			sku:  "PROD-ERR",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{Err: errors.New("db connection lost")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "Failed to retrieve product", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCatalogHandler(mockRepo, staticURLs{})
			req := httptest.NewRequest("GET", "/products/"+tc.sku+"/", nil)
			req.SetPathValue("sku", tc.sku)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetProduct(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}
