package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"securevet.io/securevet/internal/domain"
	apperrors "securevet.io/securevet/internal/pkg/errors"
	"securevet.io/securevet/internal/store"
)

// ListUsers handles GET /admin/users.
func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// CreateUser handles POST /admin/users. Unlike self-registration, the
// admin picks the role.
func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidationFailed, "message": err.Error()})
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
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"code": apperrors.CodeEmailExists, "message": "email already registered"})
			return
		}
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	s.recorder.RecordActor(ctx, actor(c), domain.ActionUserCreate,
		fmt.Sprintf("created %s account %s", role, u.Email))
	c.JSON(http.StatusCreated, toUserResponse(u))
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// UpdateUser handles PUT /admin/users/:id.
func (s *Server) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	user, err := s.users.GetByID(ctx, c.Param("id"))
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
	if req.Role != "" {
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidationFailed, "message": err.Error()})
			return
		}
		user.Role = role
	}
	if err := s.users.Update(ctx, user); err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	s.recorder.RecordActor(ctx, actor(c), domain.ActionUserUpdate,
		fmt.Sprintf("updated account %s", user.Email))
	c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteUser handles DELETE /admin/users/:id. Admins cannot delete
// their own account.
func (s *Server) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)
	id := c.Param("id")

	if id == a.ID {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidationFailed, "message": "cannot delete own account"})
		return
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodeUserNotFound, "message": "user not found"})
		return
	}
	if err := s.users.Delete(ctx, id); err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	s.recorder.RecordActor(ctx, a, domain.ActionUserDelete,
		fmt.Sprintf("deleted account %s", user.Email))
	c.Status(http.StatusNoContent)
}

// ListAuditLogs handles GET /admin/audit-logs, newest first.
func (s *Server) ListAuditLogs(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidationFailed, "message": "limit must be 1..1000"})
			return
		}
		limit = n
	}

	entries, err := s.recorder.List(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// ListPasswordRequests handles GET /admin/password-requests.
func (s *Server) ListPasswordRequests(c *gin.Context) {
	reqs, err := s.pwreqs.ListPending(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}
	if reqs == nil {
		reqs = []domain.PasswordRequest{}
	}
	c.JSON(http.StatusOK, reqs)
}

// ResolvePasswordRequest handles POST /admin/password-requests/:id/resolve.
func (s *Server) ResolvePasswordRequest(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := s.pwreqs.Resolve(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodePasswordReqMissing, "message": "password request not found"})
			return
		}
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}

	s.recorder.RecordActor(ctx, actor(c), domain.ActionPasswordReset,
		fmt.Sprintf("resolved password request %s", id))
	c.Status(http.StatusNoContent)
}
