package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"message-service/internal/mocks"
	"message-service/internal/telemetry"
)

func setupAuthRouter(tokens TokenResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		setup  func(m *mocks.DirectoryRepositoryMock)
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer  ", want: http.StatusUnauthorized},
		{
			name:   "unknown token",
			header: "Bearer forged",
			setup: func(m *mocks.DirectoryRepositoryMock) {
				m.On("UserIDForToken", mock.Anything, "forged").Return("", false, nil).Once()
			},
			want: http.StatusUnauthorized,
		},
		{
			name:   "lookup error",
			header: "Bearer tok",
			setup: func(m *mocks.DirectoryRepositoryMock) {
				m.On("UserIDForToken", mock.Anything, "tok").Return("", false, assert.AnError).Once()
			},
			want: http.StatusInternalServerError,
		},
		{
			name:   "valid token",
			header: "bearer tok",
			setup: func(m *mocks.DirectoryRepositoryMock) {
				m.On("UserIDForToken", mock.Anything, "tok").Return("u-alice", true, nil).Once()
			},
			want: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := new(mocks.DirectoryRepositoryMock)
			if tt.setup != nil {
				tt.setup(dir)
			}
			router := setupAuthRouter(dir)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"user_id":"u-alice"}`, rec.Body.String())
			}
			dir.AssertExpectations(t)
		})
	}
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = telemetry.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "req-42", seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}
