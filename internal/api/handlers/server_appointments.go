package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"securevet.io/securevet/internal/metrics"
	apperrors "securevet.io/securevet/internal/pkg/errors"
	"securevet.io/securevet/internal/usecase"
)

// ListAppointments handles GET /appointments. The result is filtered by
// the single visibility rule, never by the caller's query.
func (s *Server) ListAppointments(c *gin.Context) {
	views, err := s.apptRead.Visible(c.Request.Context(), actor(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetAppointment handles GET /appointments/:id.
func (s *Server) GetAppointment(c *gin.Context) {
	view, err := s.apptRead.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RequestAppointment handles POST /appointments.
func (s *Server) RequestAppointment(c *gin.Context) {
	var input usecase.RequestAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}

	out, err := s.requestUC.Execute(c.Request.Context(), actor(c), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	metrics.AppointmentTransitions.WithLabelValues("requested").Inc()
	c.JSON(http.StatusCreated, out.Appointment)
}

// BookForClient handles POST /appointments/book.
func (s *Server) BookForClient(c *gin.Context) {
	var input usecase.BookForClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}

	out, err := s.bookUC.Execute(c.Request.Context(), actor(c), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	metrics.AppointmentTransitions.WithLabelValues("booked").Inc()
	c.JSON(http.StatusCreated, out.Appointment)
}

// ClaimAppointment handles POST /appointments/:id/claim.
func (s *Server) ClaimAppointment(c *gin.Context) {
	out, err := s.claimUC.Execute(c.Request.Context(), actor(c), usecase.ClaimAppointmentInput{
		AppointmentID: c.Param("id"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	metrics.AppointmentTransitions.WithLabelValues("claimed").Inc()
	c.JSON(http.StatusOK, out.Appointment)
}

// CompleteAppointment handles POST /appointments/:id/complete.
func (s *Server) CompleteAppointment(c *gin.Context) {
	out, err := s.completeUC.Execute(c.Request.Context(), actor(c), usecase.CompleteAppointmentInput{
		AppointmentID: c.Param("id"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	metrics.AppointmentTransitions.WithLabelValues("completed").Inc()
	c.JSON(http.StatusOK, gin.H{
		"appointment": out.Appointment,
		"record_id":   out.Record.ID,
	})
}
