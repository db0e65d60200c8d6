package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"securevet.io/securevet/internal/api/middleware"
	"securevet.io/securevet/internal/config"
	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/pkg/logger"
)

func TestBuildCORSConfig_DefaultsToAllowlistWhenOriginsEmpty(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins:        nil,
			AllowCredentials:      true,
			UnsafeAllowAllOrigins: false,
		},
	}

	got := buildCORSConfig(cfg)
	if got.AllowAllOrigins {
		t.Fatalf("AllowAllOrigins = %v, want false", got.AllowAllOrigins)
	}
	if !got.AllowCredentials {
		t.Fatalf("AllowCredentials = %v, want true", got.AllowCredentials)
	}
	if len(got.AllowOrigins) != 2 {
		t.Fatalf("len(AllowOrigins) = %d, want 2", len(got.AllowOrigins))
	}
}

func TestBuildCORSConfig_StripsWildcardUnlessUnsafeFlagEnabled(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins:        []string{"*", "https://clinic.example.com"},
			AllowCredentials:      true,
			UnsafeAllowAllOrigins: false,
		},
	}

	got := buildCORSConfig(cfg)
	if got.AllowAllOrigins {
		t.Fatalf("AllowAllOrigins = %v, want false", got.AllowAllOrigins)
	}
	if len(got.AllowOrigins) != 1 || got.AllowOrigins[0] != "https://clinic.example.com" {
		t.Fatalf("AllowOrigins = %#v, want just the explicit origin", got.AllowOrigins)
	}
}

func TestBuildCORSConfig_UnsafeAllowAllDisablesCredentials(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins:        []string{"*"},
			AllowCredentials:      true,
			UnsafeAllowAllOrigins: true,
		},
	}

	got := buildCORSConfig(cfg)
	if !got.AllowAllOrigins {
		t.Fatalf("AllowAllOrigins = %v, want true", got.AllowAllOrigins)
	}
	if got.AllowCredentials {
		t.Fatalf("AllowCredentials = %v, want false", got.AllowCredentials)
	}
	if len(got.AllowOrigins) != 0 {
		t.Fatalf("AllowOrigins = %#v, want empty", got.AllowOrigins)
	}
}

const testJWTSecret = "0123456789abcdef0123456789abcdef"

func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{Driver: "memory"},
		Security: config.SecurityConfig{
			JWTSecret:       testJWTSecret,
			JWTExpiry:       2 * time.Hour,
			EncryptionKey:   strings.Repeat("ab", 32),
			EncryptionKeyID: "k1",
			BcryptCost:      bcrypt.MinCost,
			TOTPIssuer:      "SecureVet",
		},
		Worker:    config.WorkerConfig{GeneralPoolSize: 10, MailPoolSize: 2},
		RateLimit: config.RateLimitConfig{Requests: 100, Window: time.Minute},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")

	application, err := Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(application.Shutdown)
	return application
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, role domain.Role) string {
	t.Helper()
	token, _, err := middleware.GenerateToken(middleware.JWTConfig{
		SigningKey: []byte(testJWTSecret),
		Issuer:     "securevet",
		ExpiresIn:  time.Hour,
	}, &domain.User{ID: "test-" + string(role), Email: string(role) + "@clinic.test", Role: role})
	require.NoError(t, err)
	return token
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	application := newTestApp(t, testConfig())

	w := doJSON(application.Router, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(application.Router, http.MethodGet, "/api/v1/appointments", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(application.Router, http.MethodGet, "/api/v1/appointments", tokenFor(t, domain.RoleStaff), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	application := newTestApp(t, testConfig())

	w := doJSON(application.Router, http.MethodGet, "/api/v1/admin/users", tokenFor(t, domain.RoleStaff), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(application.Router, http.MethodGet, "/api/v1/admin/users", tokenFor(t, domain.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RegisterLoginFlow(t *testing.T) {
	application := newTestApp(t, testConfig())

	register := map[string]string{
		"name":     "Dana Whitfield",
		"email":    "dana@example.com",
		"password": "wildflower9",
	}
	w := doJSON(application.Router, http.MethodPost, "/api/v1/auth/register", "", register)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(application.Router, http.MethodPost, "/api/v1/auth/register", "", register)
	require.Equal(t, http.StatusConflict, w.Code)

	login := map[string]string{"email": "dana@example.com", "password": "wildflower9"}
	w = doJSON(application.Router, http.MethodPost, "/api/v1/auth/login", "", login)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	w = doJSON(application.Router, http.MethodGet, "/api/v1/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "dana@example.com")
}

func TestRouter_RateLimitsAuthEndpoints(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Requests: 2, Window: time.Minute}
	application := newTestApp(t, cfg)

	login := map[string]string{"email": "nobody@example.com", "password": "irrelevant1"}
	for i := 0; i < 2; i++ {
		w := doJSON(application.Router, http.MethodPost, "/api/v1/auth/login", "", login)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doJSON(application.Router, http.MethodPost, "/api/v1/auth/login", "", login)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_StaffOnlyEndpointsRejectClients(t *testing.T) {
	application := newTestApp(t, testConfig())
	clientToken := tokenFor(t, domain.RoleClient)

	book := map[string]string{
		"client_id": "someone",
		"pet_id":    "some-pet",
		"date":      "2031-01-02",
		"time":      "10:00",
		"reason":    "Checkup",
	}
	w := doJSON(application.Router, http.MethodPost, "/api/v1/appointments/book", clientToken, book)
	require.Equal(t, http.StatusForbidden, w.Code)

	record := map[string]string{
		"pet_id":    "some-pet",
		"date":      "2031-01-02",
		"diagnosis": "Otitis",
		"treatment": "Drops",
	}
	w = doJSON(application.Router, http.MethodPost, "/api/v1/records", clientToken, record)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Staff clears the role gate; the unknown ids then fail lookup, not
	// authorization.
	w = doJSON(application.Router, http.MethodPost, "/api/v1/appointments/book", tokenFor(t, domain.RoleStaff), book)
	require.NotEqual(t, http.StatusForbidden, w.Code)
}

func TestRouter_OpenAPIRejectsMalformedRegister(t *testing.T) {
	application := newTestApp(t, testConfig())

	// Missing the required password field.
	w := doJSON(application.Router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":  "No Password",
		"email": "np@example.com",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
