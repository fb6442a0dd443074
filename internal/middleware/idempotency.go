package middleware

import (
	"bytes"
	"crypto/sha256"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/domain/dto"
	"github.com/guttosm/meal-ledger/internal/logger"
)

const (
	// IdempotencyKeyHeader lets clients retry a mutation safely.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the store.
	IdempotencyReplayedHeader = "Idempotent-Replayed"
	// DefaultIdempotencyTTL is how long a successful response is replayed.
	DefaultIdempotencyTTL = 10 * time.Minute

	maxIdempotencyKeyLength = 255
)

// IdempotencyConfig holds configuration for the idempotency middleware.
type IdempotencyConfig struct {
	Store   *IdempotencyStore
	Enabled bool
}

// DefaultIdempotencyConfig returns an enabled config with its own store.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Store:   NewIdempotencyStore(DefaultIdempotencyTTL),
		Enabled: true,
	}
}

// Idempotency replays the stored response when a mutation is retried with
// the same Idempotency-Key, so a client that lost the answer to "add leave"
// does not consume leave days twice. Keys are scoped to method and path.
// Reusing a key with a different body is rejected with 422, and a retry that
// races the original gets 409. Only successful responses are stored; after a
// failure the key may be used again.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	store := cfg.Store

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !mutatingMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			class := ErrorClass{Status: http.StatusBadRequest, Code: dto.ErrCodeInvalidRequest}
			c.AbortWithStatusJSON(class.Status, NewErrorResponse(c, class))
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			class := ErrorClass{Status: http.StatusBadRequest, Code: dto.ErrCodeInvalidRequest}
			c.AbortWithStatusJSON(class.Status, NewErrorResponse(c, class))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		scope := key + " " + c.Request.Method + " " + c.Request.URL.Path
		rec, result := store.begin(scope, sha256.Sum256(body), time.Now())
		switch result {
		case beginReplay:
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(rec.status, rec.contentType, rec.body)
			c.Abort()
			return
		case beginMismatch:
			class := ErrorClass{Status: http.StatusUnprocessableEntity, Code: dto.ErrCodeIdempotencyKeyReused}
			c.AbortWithStatusJSON(class.Status, NewErrorResponse(c, class))
			return
		case beginInFlight:
			c.Header("Retry-After", "1")
			class := ErrorClass{Status: http.StatusConflict, Code: dto.ErrCodeIdempotencyInFlight}
			c.AbortWithStatusJSON(class.Status, NewErrorResponse(c, class))
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		stored := false
		defer func() {
			if !stored {
				store.abandon(scope)
			}
		}()

		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		store.complete(scope, status, writer.Header().Get("Content-Type"), writer.body.Bytes(), time.Now())
		stored = true

		log := logger.Logger()
		log.Debug().
			Str("request_id", GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Int("status_code", status).
			Msg("Stored idempotent response")
	}
}

func mutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// capturingWriter copies the response body while passing it through.
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
