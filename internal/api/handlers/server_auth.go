package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"securevet.io/securevet/internal/api/middleware"
	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/metrics"
	"securevet.io/securevet/internal/notification"
	apperrors "securevet.io/securevet/internal/pkg/errors"
	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/store"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register handles POST /auth/register. Self-registration always
// creates a client account; staff and admin accounts come from admins.
func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeInternal, "hash password", http.StatusInternalServerError))
		return
	}

	u := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         domain.RoleClient,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"code": apperrors.CodeEmailExists, "message": "email already registered"})
			return
		}
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	s.recorder.Record(c.Request.Context(), u.Email, domain.ActionUserCreate, "self-registered client account")
	c.JSON(http.StatusCreated, toUserResponse(u))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code"`
}

// Login handles POST /auth/login. Accounts with two-factor enabled must
// supply a valid TOTP code alongside the password.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		logger.Warn("login failed: unknown email")
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"code": apperrors.CodeAuthFailed, "message": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("login failed: invalid credentials")
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		s.recorder.Record(ctx, user.Email, domain.ActionLoginFailed, "wrong password")
		c.JSON(http.StatusUnauthorized, gin.H{"code": apperrors.CodeAuthFailed, "message": "invalid credentials"})
		return
	}

	if user.TwoFactorEnabled {
		if req.TOTPCode == "" {
			metrics.LoginsTotal.WithLabelValues("2fa_required").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"code": apperrors.CodeTwoFactorRequired, "message": "two-factor code required"})
			return
		}
		if !s.twoFactor.Verify(req.TOTPCode, user.TwoFactorSecret) {
			metrics.LoginsTotal.WithLabelValues("failed").Inc()
			s.recorder.Record(ctx, user.Email, domain.ActionLoginFailed, "wrong 2fa code")
			c.JSON(http.StatusUnauthorized, gin.H{"code": apperrors.CodeTwoFactorInvalid, "message": "invalid two-factor code"})
			return
		}
	}

	token, expiresAt, err := middleware.GenerateToken(s.jwtCfg, user)
	if err != nil {
		logger.Error("failed to generate token", zap.Error(err))
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeInternal, "generate token", http.StatusInternalServerError))
		return
	}

	s.recorder.Record(ctx, user.Email, domain.ActionLogin, "")
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"user":       toUserResponse(user),
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword handles POST /auth/forgot-password. The request is
// queued for manual admin resolution; the response never reveals
// whether the email exists.
func (s *Server) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		pr := &domain.PasswordRequest{
			Email:       req.Email,
			Status:      domain.PasswordRequestPending,
			RequestDate: time.Now().UTC(),
		}
		if err := s.pwreqs.Create(ctx, pr); err != nil {
			logger.Warn("password request write failed", zap.Error(err))
		} else {
			s.recorder.Record(ctx, req.Email, domain.ActionPasswordReset, "reset requested")
			if s.mail != nil {
				s.mail.Dispatch(notification.Message{
					To:      req.Email,
					Subject: "Password reset request received",
					Body:    "Your password reset request was received. A clinic administrator will contact you.",
				})
			}
		}
	}

	c.Status(http.StatusAccepted)
}

// CurrentUser handles GET /auth/me.
func (s *Server) CurrentUser(c *gin.Context) {
	a := actor(c)
	user, err := s.users.GetByID(c.Request.Context(), a.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodeUserNotFound, "message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UpdateProfile handles PUT /auth/profile.
func (s *Server) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()
	a := actor(c)

	user, err := s.users.GetByID(ctx, a.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodeUserNotFound, "message": "user not found"})
		return
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if err := s.users.Update(ctx, user); err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	s.recorder.RecordActor(ctx, a, domain.ActionProfileUpdate, "")
	c.JSON(http.StatusOK, toUserResponse(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword handles PUT /auth/password.
func (s *Server) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()
	a := actor(c)

	user, err := s.users.GetByID(ctx, a.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodeUserNotFound, "message": "user not found"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"code": apperrors.CodeIncorrectPassword, "message": "current password is incorrect"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeInternal, "hash password", http.StatusInternalServerError))
		return
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	s.recorder.RecordActor(ctx, a, domain.ActionPasswordChange, "")
	c.Status(http.StatusNoContent)
}

// TwoFactorSetup handles POST /auth/2fa/setup. The secret is stored but
// two-factor stays disabled until the first code verifies.
func (s *Server) TwoFactorSetup(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)

	user, err := s.users.GetByID(ctx, a.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodeUserNotFound, "message": "user not found"})
		return
	}

	secret, url, err := s.twoFactor.GenerateSecret(user.Email)
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeInternal, "generate totp secret", http.StatusInternalServerError))
		return
	}

	user.TwoFactorSecret = secret
	user.TwoFactorEnabled = false
	if err := s.users.Update(ctx, user); err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"secret": secret, "otpauth_url": url})
}

type twoFactorCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// TwoFactorEnable handles POST /auth/2fa/enable.
func (s *Server) TwoFactorEnable(c *gin.Context) {
	var req twoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()
	a := actor(c)

	user, err := s.users.GetByID(ctx, a.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodeUserNotFound, "message": "user not found"})
		return
	}
	if user.TwoFactorSecret == "" || !s.twoFactor.Verify(req.Code, user.TwoFactorSecret) {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeTwoFactorInvalid, "message": "invalid two-factor code"})
		return
	}

	user.TwoFactorEnabled = true
	if err := s.users.Update(ctx, user); err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	s.recorder.RecordActor(ctx, a, domain.ActionTwoFactorEnable, "")
	c.Status(http.StatusNoContent)
}

// TwoFactorDisable handles POST /auth/2fa/disable. Disabling requires a
// currently valid code.
func (s *Server) TwoFactorDisable(c *gin.Context) {
	var req twoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()
	a := actor(c)

	user, err := s.users.GetByID(ctx, a.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodeUserNotFound, "message": "user not found"})
		return
	}
	if !user.TwoFactorEnabled || !s.twoFactor.Verify(req.Code, user.TwoFactorSecret) {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeTwoFactorInvalid, "message": "invalid two-factor code"})
		return
	}

	user.TwoFactorEnabled = false
	user.TwoFactorSecret = ""
	if err := s.users.Update(ctx, user); err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	s.recorder.RecordActor(ctx, a, domain.ActionTwoFactorDisable, "")
	c.Status(http.StatusNoContent)
}
