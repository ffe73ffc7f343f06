package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	apperrors "github.com/uniedit/fintoc-gateway/internal/utils/errors"
	"github.com/uniedit/fintoc-gateway/internal/utils/metrics"
)

const (
	// IdempotencyKeyHeader is the header for idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks a response served from the idempotency store.
	IdempotentReplayHeader = "Idempotent-Replayed"

	idempotencyKeyPrefix  = "fintoc:idempotency:"
	idempotencyCacheName  = "idempotency"
	defaultIdempotencyTTL = 24 * time.Hour
	idempotencyLockTTL    = 30 * time.Second
)

// IdempotencyConfig holds idempotency middleware configuration.
type IdempotencyConfig struct {
	TTL     time.Duration
	Metrics *metrics.Metrics
}

// idempotencyResponse is the stored response.
type idempotencyResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	BodyHash    string `json:"body_hash"`
	Body        []byte `json:"body"`
}

// idempotencyResponseWriter wraps gin.ResponseWriter to capture the response.
type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays stored responses of POST requests carrying an Idempotency-Key header.
// Reusing a key with a different body is rejected with 422; a concurrent request
// with the same key gets 409. Store failures let the request through unprotected.
func Idempotency(store outbound.IdempotencyStorePort, cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := generateIdempotencyKey(c, idempotencyKey)
		bodyHash := bodyHashKey(c)

		data, err := store.Get(ctx, cacheKey)
		if err != nil {
			c.Next()
			return
		}
		if data != nil {
			var cached idempotencyResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				recordCache(cfg.Metrics, true)
				if cached.BodyHash != bodyHash {
					apperrors.Abort(c, apperrors.Unprocessable("idempotency_key_reused",
						"Idempotency-Key was already used with a different request body"))
					return
				}
				c.Header(IdempotentReplayHeader, "true")
				c.Data(cached.StatusCode, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}
		recordCache(cfg.Metrics, false)

		locked, err := store.Lock(ctx, cacheKey, idempotencyLockTTL)
		if err != nil {
			c.Next()
			return
		}
		if !locked {
			apperrors.Abort(c, apperrors.Conflict("request_in_progress",
				"A request with this idempotency key is already being processed"))
			return
		}
		defer func() { _ = store.Unlock(ctx, cacheKey) }()

		respWriter := &idempotencyResponseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = respWriter

		c.Next()

		// Server errors are not stored so the client can retry.
		status := c.Writer.Status()
		if status < 200 || status >= 500 {
			return
		}
		resp, err := json.Marshal(idempotencyResponse{
			StatusCode:  status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			BodyHash:    bodyHash,
			Body:        respWriter.body.Bytes(),
		})
		if err == nil {
			_ = store.Set(ctx, cacheKey, resp, cfg.TTL)
		}
	}
}

func recordCache(m *metrics.Metrics, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.RecordCacheHit(idempotencyCacheName)
	} else {
		m.RecordCacheMiss(idempotencyCacheName)
	}
}

// generateIdempotencyKey scopes the client key by method and route.
func generateIdempotencyKey(c *gin.Context, idempotencyKey string) string {
	hash := sha256.Sum256([]byte(c.Request.Method + ":" + c.Request.URL.Path + ":" + idempotencyKey))
	return idempotencyKeyPrefix + hex.EncodeToString(hash[:])
}

// bodyHashKey hashes the request body and restores it for the handler.
func bodyHashKey(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}
