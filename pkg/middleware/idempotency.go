package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-market/pkg/errors"
	"go-market/pkg/logger"
)

const (
	// IdempotencyHeader carries the client-chosen key
	IdempotencyHeader = "Idempotency-Key"
	// ReplayedHeader is set on responses served from the store
	ReplayedHeader = "Idempotent-Replayed"

	maxIdempotentBody = 1 << 20
)

// IdempotencyRecord is what the store keeps per key
type IdempotencyRecord struct {
	RequestHash string          `json:"request_hash"`
	Done        bool            `json:"done"`
	Status      int             `json:"status,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

// IdempotencyStore persists records. Reserve returns (nil, nil) when the key was free and is now held.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) (*IdempotencyRecord, error)
	Complete(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisIdempotencyStore keeps records as JSON strings with a TTL
type RedisIdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewRedisIdempotencyStore creates a store namespaced by prefix
func NewRedisIdempotencyStore(client *redis.Client, prefix string) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, prefix: prefix}
}

// Reserve implements IdempotencyStore
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) (*IdempotencyRecord, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	ok, err := s.client.SetNX(ctx, s.prefix+key, data, ttl).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		return nil, err
	}
	var existing IdempotencyRecord
	if err := json.Unmarshal(raw, &existing); err != nil {
		return nil, err
	}
	return &existing, nil
}

// Complete implements IdempotencyStore
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, data, ttl).Err()
}

// Release implements IdempotencyStore
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

type capturingWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a request with the same key and body is repeated.
// A reused key with a different body is a conflict. Failed requests release the key so clients can retry.
// Without a store or a key header the middleware is a pass-through; store failures fail open.
func Idempotency(store IdempotencyStore, ttl time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if store == nil || key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotentBody))
		if err != nil {
			c.Error(errors.NewValidation("failed to read request body", nil))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		scope := c.GetString(UserIDKey) + ":" + c.Request.Method + ":" + c.FullPath()
		scopedKey := scope + ":" + key
		hash := requestHash(c.Request.URL.Path, body)
		ctx := c.Request.Context()

		existing, err := store.Reserve(ctx, scopedKey, IdempotencyRecord{RequestHash: hash}, ttl)
		if err != nil {
			log.WithContext(ctx).Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		if existing != nil {
			switch {
			case existing.RequestHash != hash:
				c.Error(errors.NewConflict("idempotency key reused with a different request"))
			case !existing.Done:
				c.Error(errors.NewConflict("a request with this idempotency key is in progress"))
			default:
				c.Header(ReplayedHeader, "true")
				c.Data(existing.Status, "application/json", existing.Body)
			}
			c.Abort()
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status >= http.StatusInternalServerError || len(c.Errors) > 0 {
			_ = store.Release(ctx, scopedKey)
			return
		}

		rec := IdempotencyRecord{
			RequestHash: hash,
			Done:        true,
			Status:      status,
			Body:        json.RawMessage(writer.buf.Bytes()),
		}
		if err := store.Complete(ctx, scopedKey, rec, ttl); err != nil {
			log.WithContext(ctx).Warn("failed to store idempotent response", zap.Error(err))
		}
	}
}

func requestHash(path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(path + ":"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
