package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securevet.io/securevet/internal/domain"
	apperrors "securevet.io/securevet/internal/pkg/errors"
	"securevet.io/securevet/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")
}

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func testUser() *domain.User {
	return &domain.User{
		ID:    "u1",
		Name:  "Dr. Soto",
		Email: "soto@vet.example",
		Role:  domain.RoleStaff,
	}
}

func authedRouter(handler gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{JWTAuth(testSigningKey)}, extra...)
	chain = append(chain, handler)
	r.GET("/probe", chain...)
	return r
}

func TestJWTAuth_ValidToken(t *testing.T) {
	token, expiresAt, err := GenerateToken(JWTConfig{
		SigningKey: testSigningKey,
		Issuer:     "securevet",
		ExpiresIn:  2 * time.Hour,
	}, testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiresAt, time.Minute)

	var got domain.Actor
	r := authedRouter(func(c *gin.Context) {
		got = GetActor(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "soto@vet.example", got.Email)
	assert.Equal(t, domain.RoleStaff, got.Role)
}

func TestJWTAuth_Rejections(t *testing.T) {
	expired, _, err := GenerateToken(JWTConfig{
		SigningKey: testSigningKey,
		ExpiresIn:  -time.Minute,
	}, testUser())
	require.NoError(t, err)

	otherKey, _, err := GenerateToken(JWTConfig{
		SigningKey: []byte("another-signing-key-of-32-bytes!"),
		ExpiresIn:  time.Hour,
	}, testUser())
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"missing header", "", "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", "UNAUTHORIZED"},
		{"garbage token", "Bearer not-a-token", "UNAUTHORIZED"},
		{"expired token", "Bearer " + expired, "TOKEN_EXPIRED"},
		{"wrong key", "Bearer " + otherKey, "UNAUTHORIZED"},
	}

	r := authedRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	token, _, err := GenerateToken(JWTConfig{
		SigningKey: testSigningKey,
		ExpiresIn:  time.Hour,
	}, testUser()) // staff
	require.NoError(t, err)

	tests := []struct {
		name    string
		allowed []domain.Role
		want    int
	}{
		{"staff allowed", []domain.Role{domain.RoleStaff, domain.RoleAdmin}, http.StatusOK},
		{"admin only", []domain.Role{domain.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authedRouter(
				func(c *gin.Context) { c.Status(http.StatusOK) },
				RequireRoles(tt.allowed...),
			)
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireCapability(t *testing.T) {
	token, _, err := GenerateToken(JWTConfig{
		SigningKey: testSigningKey,
		ExpiresIn:  time.Hour,
	}, testUser()) // staff
	require.NoError(t, err)

	r := authedRouter(
		func(c *gin.Context) { c.Status(http.StatusOK) },
		RequireCapability(domain.CapManageUsers), // admin only
	)
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestErrorHandler_AppError(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrAlreadyAssignedf("a1"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "APPOINTMENT_ALREADY_ASSIGNED")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestErrorHandler_GenericError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	r := gin.New()
	r.GET("/auth", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/auth", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Another IP still has budget.
	req = httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOpenAPIValidator_RejectsMalformedBody(t *testing.T) {
	mw := MustOpenAPIValidator("/api/v1")

	r := gin.New()
	r.POST("/api/v1/auth/login", mw, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", mw, func(c *gin.Context) { c.Status(http.StatusOK) })

	// Missing required fields.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown paths pass through.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
