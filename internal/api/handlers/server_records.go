package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"securevet.io/securevet/internal/domain"
	apperrors "securevet.io/securevet/internal/pkg/errors"
)

// ListRecords handles GET /records with role-based filtering and
// decrypted notes.
func (s *Server) ListRecords(c *gin.Context) {
	views, err := s.records.Visible(c.Request.Context(), actor(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, views)
}

type recordRequest struct {
	PetID     string `json:"pet_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Diagnosis string `json:"diagnosis" binding:"required"`
	Treatment string `json:"treatment" binding:"required"`
	Notes     string `json:"notes"`
}

// CreateRecord handles POST /records for manual staff entries.
func (s *Server) CreateRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()
	a := actor(c)

	if err := domain.ValidateSchedule(req.Date, "00:00"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidationFailed, "message": err.Error()})
		return
	}

	rec := &domain.MedicalRecord{
		PetID:     req.PetID,
		Date:      req.Date,
		Diagnosis: req.Diagnosis,
		Treatment: req.Treatment,
	}
	if err := s.records.Create(ctx, a, rec, req.Notes); err != nil {
		_ = c.Error(err)
		return
	}

	s.recorder.RecordActor(ctx, a, domain.ActionRecordCreateManual,
		fmt.Sprintf("record %s for pet %s", rec.ID, rec.PetID))
	c.JSON(http.StatusCreated, gin.H{"id": rec.ID})
}
