package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"securevet.io/securevet/internal/domain"
	apperrors "securevet.io/securevet/internal/pkg/errors"
)

// ListPets handles GET /pets. Clients see their own pets; staff and
// admins see the whole registry.
func (s *Server) ListPets(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)

	var (
		pets []domain.Pet
		err  error
	)
	if a.Role.Can(domain.CapViewAllPets) {
		pets, err = s.pets.List(ctx)
	} else {
		pets, err = s.pets.ListByOwner(ctx, a.ID)
	}
	if err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}
	if pets == nil {
		pets = []domain.Pet{}
	}
	c.JSON(http.StatusOK, pets)
}

// GetPet handles GET /pets/:id. A pet outside the actor's scope reads
// as not found.
func (s *Server) GetPet(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)

	pet, err := s.pets.GetByID(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodePetNotFound, "message": "pet not found"})
		return
	}
	if !a.Role.Can(domain.CapViewAllPets) && pet.OwnerID != a.ID {
		c.JSON(http.StatusNotFound, gin.H{"code": apperrors.CodePetNotFound, "message": "pet not found"})
		return
	}
	c.JSON(http.StatusOK, pet)
}

type petRequest struct {
	OwnerID string  `json:"owner_id"`
	Name    string  `json:"name" binding:"required"`
	Type    string  `json:"type" binding:"required"`
	Breed   string  `json:"breed"`
	Age     int     `json:"age"`
	Weight  float64 `json:"weight"`
}

// CreatePet handles POST /pets. Clients register pets for themselves;
// staff and admins may register on a client's behalf via owner_id.
func (s *Server) CreatePet(c *gin.Context) {
	var req petRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeInvalidRequest, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()
	a := actor(c)

	ownerID := a.ID
	if req.OwnerID != "" && req.OwnerID != a.ID {
		if !a.Role.Can(domain.CapViewAllPets) {
			c.JSON(http.StatusForbidden, gin.H{"code": apperrors.CodeForbiddenRole, "message": "may not register pets for other clients"})
			return
		}
		owner, err := s.users.GetByID(ctx, req.OwnerID)
		if err != nil || owner.Role != domain.RoleClient {
			c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidationFailed, "message": "owner must be an existing client"})
			return
		}
		ownerID = req.OwnerID
	}

	pet := &domain.Pet{
		OwnerID: ownerID,
		Name:    req.Name,
		Type:    req.Type,
		Breed:   req.Breed,
		Age:     req.Age,
		Weight:  req.Weight,
	}
	if err := s.pets.Create(ctx, pet); err != nil {
		_ = c.Error(apperrors.ErrStoreUnavailable(err))
		return
	}
	c.JSON(http.StatusCreated, pet)
}
