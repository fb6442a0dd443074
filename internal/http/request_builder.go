package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/domain/dto"
	"github.com/guttosm/meal-ledger/internal/i18n"
	"github.com/guttosm/meal-ledger/internal/middleware"
)

var successResponsePool = sync.Pool{
	New: func() interface{} {
		return &dto.SuccessResponse{}
	},
}

func getSuccessResponse() *dto.SuccessResponse {
	if resp, ok := successResponsePool.Get().(*dto.SuccessResponse); ok {
		return resp
	}
	return &dto.SuccessResponse{}
}

func putSuccessResponse(resp *dto.SuccessResponse) {
	resp.Data = nil
	resp.RequestID = ""
	resp.Timestamp = time.Time{}
	successResponsePool.Put(resp)
}

// BuildRequest binds the JSON body of c into a new T.
func BuildRequest[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ResponseBuilder writes the envelope shared by every API response.
// Success bodies come from a sync.Pool.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a new response builder for the given context.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success sends data wrapped in a SuccessResponse.
func (b *ResponseBuilder) Success(statusCode int, data interface{}) {
	resp := getSuccessResponse()
	resp.Data = data
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now().UTC()

	// Rendering is synchronous, so the response can go back to the pool.
	b.c.JSON(statusCode, resp)
	putSuccessResponse(resp)
}

// SuccessOK sends a 200 OK response with the given data.
func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data)
}

// SuccessCreated sends a 201 Created response with the given data.
func (b *ResponseBuilder) SuccessCreated(data interface{}) {
	b.Success(http.StatusCreated, data)
}

// NoContent sends an empty 204 response.
func (b *ResponseBuilder) NoContent() {
	b.c.Status(http.StatusNoContent)
}

// Error sends an error with an explicit status and translation key. err, if
// any, is attached to the context for the error handler to log.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	message := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c))
	resp := dto.NewError(dto.ErrCodeFromStatus(statusCode), message).
		WithRequestID(middleware.GetRequestID(b.c))
	if err != nil {
		_ = b.c.Error(err)
	}
	b.c.AbortWithStatusJSON(statusCode, resp)
}

// BindError reports a body that could not be decoded or failed binding tags.
func (b *ResponseBuilder) BindError(err error) {
	message := i18n.GetTranslator().Translate(i18n.ErrKeyInvalidRequestBody, i18n.GetLocale(b.c))
	resp := dto.NewError(dto.ErrCodeInvalidRequest, message).
		WithRequestID(middleware.GetRequestID(b.c))
	resp.Details = map[string]string{"reason": err.Error()}
	_ = b.c.Error(err)
	b.c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

// Fail renders err by its class: ledger rule violations keep their reason,
// store and infrastructure errors are reduced to their code.
func (b *ResponseBuilder) Fail(err error) {
	class := middleware.ClassifyError(err)
	_ = b.c.Error(err)
	b.c.AbortWithStatusJSON(class.Status, middleware.NewErrorResponse(b.c, class))
}

// ObjectIDParam parses the path parameter name as an ObjectID. On failure it
// writes a 400 with messageKey and reports false.
func ObjectIDParam(c *gin.Context, name, messageKey string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, messageKey, nil)
		return primitive.NilObjectID, false
	}
	return id, true
}
