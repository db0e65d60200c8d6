// Package handlers implements the HTTP endpoints of the SecureVet API.
//
// Handlers bind input, resolve the acting identity from the request
// context, and delegate to use cases and read services. Structured
// errors flow through the shared ErrorHandler middleware via c.Error.
package handlers

import (
	"github.com/gin-gonic/gin"

	"securevet.io/securevet/internal/api/middleware"
	"securevet.io/securevet/internal/audit"
	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/notification"
	"securevet.io/securevet/internal/service"
	"securevet.io/securevet/internal/store"
	"securevet.io/securevet/internal/usecase"
)

// Server implements all API handlers.
type Server struct {
	users  store.Users
	pets   store.Pets
	pwreqs store.PasswordRequests

	jwtCfg     middleware.JWTConfig
	bcryptCost int

	recorder  *audit.Recorder
	twoFactor *service.TwoFactor
	apptRead  *service.Appointments
	records   *service.Records

	requestUC  *usecase.RequestAppointmentUseCase
	claimUC    *usecase.ClaimAppointmentUseCase
	completeUC *usecase.CompleteAppointmentUseCase
	bookUC     *usecase.BookForClientUseCase

	mail *notification.Dispatcher // optional
}

// ServerDeps holds all dependencies for creating a Server.
// Manual DI, no Wire/Dig.
type ServerDeps struct {
	Users            store.Users
	Pets             store.Pets
	PasswordRequests store.PasswordRequests

	JWTCfg     middleware.JWTConfig
	BcryptCost int

	Recorder  *audit.Recorder
	TwoFactor *service.TwoFactor
	ApptRead  *service.Appointments
	Records   *service.Records

	RequestUC  *usecase.RequestAppointmentUseCase
	ClaimUC    *usecase.ClaimAppointmentUseCase
	CompleteUC *usecase.CompleteAppointmentUseCase
	BookUC     *usecase.BookForClientUseCase

	Mail *notification.Dispatcher
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		users:      deps.Users,
		pets:       deps.Pets,
		pwreqs:     deps.PasswordRequests,
		jwtCfg:     deps.JWTCfg,
		bcryptCost: deps.BcryptCost,
		recorder:   deps.Recorder,
		twoFactor:  deps.TwoFactor,
		apptRead:   deps.ApptRead,
		records:    deps.Records,
		requestUC:  deps.RequestUC,
		claimUC:    deps.ClaimUC,
		completeUC: deps.CompleteUC,
		bookUC:     deps.BookUC,
		mail:       deps.Mail,
	}
}

// actor resolves the authenticated identity placed by the JWT middleware.
func actor(c *gin.Context) domain.Actor {
	return middleware.GetActor(c.Request.Context())
}

// userResponse is the public shape of an account.
type userResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Role             string `json:"role"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	CreatedAt        string `json:"created_at,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	r := userResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Phone:            u.Phone,
		Role:             string(u.Role),
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
	if !u.CreatedAt.IsZero() {
		r.CreatedAt = u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return r
}
