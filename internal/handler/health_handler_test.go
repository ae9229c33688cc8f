package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeBroker struct{ healthy bool }

func (f fakeBroker) IsHealthy() bool { return f.healthy }

func TestHealthHandler_LivenessProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewHealthHandler(nil, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/health/live", nil)

	handler.LivenessProbe(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)
}

func TestHealthHandler_ReadinessProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		database   Pinger
		cache      Pinger
		publisher  BrokerHealth
		wantStatus int
		want       map[string]string
	}{
		{
			name:       "all healthy",
			database:   fakePinger{},
			cache:      fakePinger{},
			publisher:  fakeBroker{healthy: true},
			wantStatus: http.StatusOK,
			want:       map[string]string{"status": "UP", "database": "healthy", "redis": "healthy", "rabbitmq": "healthy"},
		},
		{
			name:       "optional integrations disabled",
			database:   fakePinger{},
			wantStatus: http.StatusOK,
			want:       map[string]string{"status": "UP", "redis": "disabled", "rabbitmq": "disabled"},
		},
		{
			name:       "database down",
			database:   fakePinger{err: assert.AnError},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"status": "DOWN", "database": "unhealthy"},
		},
		{
			name:       "broker down",
			database:   fakePinger{},
			publisher:  fakeBroker{healthy: false},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"status": "DOWN", "rabbitmq": "unhealthy"},
		},
		{
			name:       "redis down",
			database:   fakePinger{},
			cache:      fakePinger{err: assert.AnError},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"status": "DOWN", "redis": "unhealthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.database, tt.cache, tt.publisher)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/health/ready", nil)

			handler.ReadinessProbe(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			for k, v := range tt.want {
				assert.Equal(t, v, body[k], k)
			}
		})
	}
}
