package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-market/pkg/errors"
	"go-market/pkg/logger"
)

var testSecret = []byte("test-secret")

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	log := logger.NewNop()
	r.Use(TraceID(), ErrorHandler(log))
	r.POST("/things", handlers...)
	return r
}

func TestAuthenticate(t *testing.T) {
	var seen string
	r := newRouter(Authenticate(testSecret), func(c *gin.Context) {
		seen = c.GetString(UserIDKey)
		c.Status(http.StatusNoContent)
	})

	token, err := IssueToken(testSecret, "user-1", time.Minute)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		want   int
	}{
		"valid":        {"Bearer " + token, http.StatusNoContent},
		"missing":      {"", http.StatusUnauthorized},
		"wrong scheme": {"Basic " + token, http.StatusUnauthorized},
		"garbage":      {"Bearer not.a.token", http.StatusUnauthorized},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/things", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
	assert.Equal(t, "user-1", seen)
}

func TestAuthenticate_RejectsOtherSecret(t *testing.T) {
	r := newRouter(Authenticate(testSecret), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	token, err := IssueToken([]byte("other"), "user-1", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeUnauthorized)
}

type memoryIdempotencyStore struct {
	mu      sync.Mutex
	records map[string]IdempotencyRecord
}

func (m *memoryIdempotencyStore) Reserve(_ context.Context, key string, rec IdempotencyRecord, _ time.Duration) (*IdempotencyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[key]; ok {
		return &existing, nil
	}
	m.records[key] = rec
	return nil, nil
}

func (m *memoryIdempotencyStore) Complete(_ context.Context, key string, rec IdempotencyRecord, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = rec
	return nil
}

func (m *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func TestIdempotency_ReplaysAndConflicts(t *testing.T) {
	store := &memoryIdempotencyStore{records: map[string]IdempotencyRecord{}}
	calls := 0
	r := newRouter(Idempotency(store, time.Hour, logger.NewNop()), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(body))
		req.Header.Set(IdempotencyHeader, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send(`{"a":1}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := send(`{"a":1}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
	assert.Equal(t, 1, calls)

	third := send(`{"a":2}`)
	assert.Equal(t, http.StatusConflict, third.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_ReleasesOnError(t *testing.T) {
	store := &memoryIdempotencyStore{records: map[string]IdempotencyRecord{}}
	fail := true
	r := newRouter(Idempotency(store, time.Hour, logger.NewNop()), func(c *gin.Context) {
		if fail {
			c.Error(errors.NewConflict("not yet"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "key-2")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusConflict, send())
	fail = false
	assert.Equal(t, http.StatusOK, send())
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	r := newRouter(limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/things", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
