package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(auth *APIKeyAuth, called *bool) *gin.Engine {
	r := gin.New()
	r.Use(auth.Handler())
	r.GET("/test", func(c *gin.Context) {
		*called = true
		c.Status(http.StatusOK)
	})
	return r
}

func TestNewAPIKeyAuth(t *testing.T) {
	t.Parallel()

	t.Run("creates auth with valid keys", func(t *testing.T) {
		t.Parallel()

		auth := NewAPIKeyAuth([]string{"key1", "key2", "key3"})

		require.NotNil(t, auth)
		assert.Len(t, auth.apiKeys, 3)
		assert.True(t, auth.apiKeys["key1"])
	})

	t.Run("filters out empty keys", func(t *testing.T) {
		t.Parallel()

		auth := NewAPIKeyAuth([]string{"key1", "", "key2", ""})

		assert.Len(t, auth.apiKeys, 2)
	})

	t.Run("handles empty key slice", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, NewAPIKeyAuth(nil).apiKeys)
	})
}

func TestAPIKeyAuth_Handler_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headerName string
		apiKey     string
		validKeys  []string
	}{
		{
			name:       "valid X-API-Key header",
			headerName: headerAPIKey,
			apiKey:     "valid-key-123",
			validKeys:  []string{"valid-key-123"},
		},
		{
			name:       "valid Authorization Bearer header",
			headerName: headerAuth,
			apiKey:     "Bearer valid-key-456",
			validKeys:  []string{"valid-key-456"},
		},
		{
			name:       "matches one of multiple valid keys",
			headerName: headerAPIKey,
			apiKey:     "key2",
			validKeys:  []string{"key1", "key2", "key3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			r := newProtectedRouter(NewAPIKeyAuth(tt.validKeys), &called)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(tt.headerName, tt.apiKey)
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			assert.True(t, called, "handler should have been called")
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestAPIKeyAuth_Handler_Unauthorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headerName string
		apiKey     string
		validKeys  []string
	}{
		{
			name:      "missing API key",
			validKeys: []string{"valid-key"},
		},
		{
			name:       "invalid API key in X-API-Key header",
			headerName: headerAPIKey,
			apiKey:     "invalid-key",
			validKeys:  []string{"valid-key"},
		},
		{
			name:       "invalid API key in Authorization header",
			headerName: headerAuth,
			apiKey:     "Bearer invalid-key",
			validKeys:  []string{"valid-key"},
		},
		{
			name:       "no valid keys configured",
			headerName: headerAPIKey,
			apiKey:     "any-key",
			validKeys:  []string{},
		},
		{
			name:       "malformed Authorization header (missing Bearer)",
			headerName: headerAuth,
			apiKey:     "valid-key",
			validKeys:  []string{"valid-key"},
		},
		{
			name:       "case sensitive mismatch",
			headerName: headerAPIKey,
			apiKey:     "VALID-KEY",
			validKeys:  []string{"valid-key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			r := newProtectedRouter(NewAPIKeyAuth(tt.validKeys), &called)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.headerName != "" {
				req.Header.Set(tt.headerName, tt.apiKey)
			}
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			assert.False(t, called, "handler should not have been called")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var response models.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			assert.Equal(t, unauthorizedError, response.Error)
			assert.Equal(t, http.StatusUnauthorized, response.Status)
			assert.Equal(t, "/test", response.Path)
		})
	}
}

func TestAPIKeyAuth_ExtractAPIKey(t *testing.T) {
	auth := NewAPIKeyAuth([]string{"k"})

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"X-API-Key wins over bearer", map[string]string{headerAPIKey: "a", headerAuth: "Bearer b"}, "a"},
		{"bearer token", map[string]string{headerAuth: "Bearer b"}, "b"},
		{"basic auth ignored", map[string]string{headerAuth: "Basic dXNlcjpwYXNz"}, ""},
		{"empty bearer", map[string]string{headerAuth: "Bearer "}, ""},
		{"no headers", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, auth.extractAPIKey(req))
		})
	}
}

func TestAPIKeyAuth_IsValidAPIKey(t *testing.T) {
	auth := NewAPIKeyAuth([]string{"analytics-key-1", "analytics-key-2"})

	assert.True(t, auth.isValidAPIKey("analytics-key-2"))
	assert.False(t, auth.isValidAPIKey("analytics-key"))
	assert.False(t, auth.isValidAPIKey("analytics-key-10"))
	assert.False(t, auth.isValidAPIKey("ANALYTICS-KEY-1"))
	assert.False(t, auth.isValidAPIKey(""))
	assert.False(t, NewAPIKeyAuth(nil).isValidAPIKey("analytics-key-1"))
}
