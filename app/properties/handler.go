// Package properties serves the property objects that describe products and
// the typed values attached to them.
package properties

import (
	"context"
	"errors"
	"net/http"

	"github.com/mytheresa/go-shop-catalog/app/api"
	"github.com/mytheresa/go-shop-catalog/app/logger"
	"github.com/mytheresa/go-shop-catalog/models"
)

type ValueResponse struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

type PropertyResponse struct {
	Code      string          `json:"code"`
	Title     string          `json:"title"`
	ValueType string          `json:"value_type"`
	Values    []ValueResponse `json:"values"`
}

type PropertyProvider interface {
	GetAllPropertyObjects(ctx context.Context) ([]models.PropertyObject, error)
	GetPropertyObject(ctx context.Context, code string) (*models.PropertyObject, error)
	GetValues(ctx context.Context, codes ...string) ([]models.PropertyValue, error)
	CreatePropertyObject(ctx context.Context, object *models.PropertyObject) error
	CreatePropertyValue(ctx context.Context, value *models.PropertyValue, productSKUs []string) error
	DeletePropertyObject(ctx context.Context, code string) error
}

type PropertyHandler struct {
	repo PropertyProvider
}

func NewPropertyHandler(r PropertyProvider) *PropertyHandler {
	return &PropertyHandler{repo: r}
}

func newPropertyResponse(o models.PropertyObject, values []models.PropertyValue) PropertyResponse {
	resp := PropertyResponse{
		Code:      o.Code,
		Title:     o.Title,
		ValueType: string(o.ValueType),
		Values:    make([]ValueResponse, len(values)),
	}
	for i, v := range values {
		resp.Values[i] = ValueResponse{Code: v.Code, Value: v.String()}
	}
	return resp
}

func (h *PropertyHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	objects, err := h.repo.GetAllPropertyObjects(r.Context())
	if err != nil {
		log.Error("failed to fetch properties", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to fetch properties")
		return
	}

	values, err := h.repo.GetValues(r.Context())
	if err != nil {
		log.Error("failed to fetch property values", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to fetch properties")
		return
	}
	byObject := make(map[uint][]models.PropertyValue, len(objects))
	for _, v := range values {
		byObject[v.PropertyObjectID] = append(byObject[v.PropertyObjectID], v)
	}

	response := make([]PropertyResponse, len(objects))
	for i, o := range objects {
		response[i] = newPropertyResponse(o, byObject[o.ID])
	}

	api.JSON(w, http.StatusOK, response)
}

func (h *PropertyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Code      string `json:"code" validate:"required,max=255,slug"`
		Title     string `json:"title" validate:"required,max=255"`
		ValueType string `json:"value_type" validate:"required,oneof=string decimal"`
	}

	if err := api.DecodeJSON(r, &input); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	object := &models.PropertyObject{
		Code:      input.Code,
		Title:     input.Title,
		ValueType: models.ValueType(input.ValueType),
	}

	if err := h.repo.CreatePropertyObject(r.Context(), object); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidValueType):
			api.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrPropertyObjectExists):
			api.Error(w, http.StatusConflict, err.Error())
		default:
			logger.WithCtx(r.Context()).Error("failed to create property", "code", input.Code, "error", err)
			api.Error(w, http.StatusInternalServerError, "Failed to create property")
		}
		return
	}

	api.JSON(w, http.StatusCreated, newPropertyResponse(*object, nil))
}

// HandleCreateValue adds a value to a property object and links it to products.
// The raw value is parsed according to the property object's value type.
func (h *PropertyHandler) HandleCreateValue(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var input struct {
		Code     string   `json:"code" validate:"required,max=255,slug"`
		Value    string   `json:"value" validate:"required,max=255"`
		Products []string `json:"products" validate:"dive,required"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	object, err := h.repo.GetPropertyObject(r.Context(), code)
	if err != nil {
		if errors.Is(err, models.ErrPropertyObjectNotFound) {
			api.Error(w, http.StatusNotFound, "Property not found")
			return
		}
		logger.WithCtx(r.Context()).Error("failed to fetch property", "code", code, "error", err)
		api.Error(w, http.StatusInternalServerError, "Failed to create property value")
		return
	}

	parsed, err := models.ParseValue(object.ValueType, input.Value)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	value := &models.PropertyValue{
		PropertyObjectID: object.ID,
		PropertyObject:   *object,
		Code:             input.Code,
	}
	value.SetValue(parsed)

	if err := h.repo.CreatePropertyValue(r.Context(), value, input.Products); err != nil {
		switch {
		case errors.Is(err, models.ErrProductNotFound), errors.Is(err, models.ErrPropertyValueMismatch):
			api.Error(w, http.StatusBadRequest, err.Error())
		default:
			logger.WithCtx(r.Context()).Error("failed to create property value", "code", code, "error", err)
			api.Error(w, http.StatusInternalServerError, "Failed to create property value")
		}
		return
	}

	api.JSON(w, http.StatusCreated, ValueResponse{Code: value.Code, Value: value.String()})
}

func (h *PropertyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	err := h.repo.DeletePropertyObject(r.Context(), code)
	switch {
	case err == nil:
		api.NoContent(w)
	case errors.Is(err, models.ErrPropertyObjectNotFound):
		api.Error(w, http.StatusNotFound, "Property not found")
	case errors.Is(err, models.ErrPropertyObjectInUse):
		api.Error(w, http.StatusConflict, models.ErrPropertyObjectInUse.Error())
	default:
		logger.WithCtx(r.Context()).Error("failed to delete property", "code", code, "error", err)
		api.Error(w, http.StatusInternalServerError, "Failed to delete property")
	}
}
