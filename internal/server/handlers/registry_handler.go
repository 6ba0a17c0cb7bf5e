package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// RegistryService is the animal, vaccination and profile API consumed by the handlers.
type RegistryService interface {
	CreateAnimal(ctx context.Context, userID string, in models.Animal) (models.Animal, error)
	ListAnimals(ctx context.Context, userID string) ([]models.Animal, error)
	GetAnimal(ctx context.Context, userID, id string) (models.Animal, error)
	UpdateAnimal(ctx context.Context, userID, id string, patch models.AnimalPatch) (models.Animal, error)
	DeleteAnimal(ctx context.Context, userID, id string) error
	AddWeight(ctx context.Context, userID, animalID string, in models.WeightRecord) (models.WeightRecord, error)
	CreateVaccination(ctx context.Context, userID string, in models.Vaccination) (models.Vaccination, error)
	ListVaccinations(ctx context.Context, userID string) ([]models.Vaccination, error)
	UpdateVaccination(ctx context.Context, userID, id string, patch models.VaccinationPatch) (models.Vaccination, error)
	CompleteVaccination(ctx context.Context, userID, id string) (models.Vaccination, error)
	DeleteVaccination(ctx context.Context, userID, id string) error
	SaveProfile(ctx context.Context, userID string, in models.Profile) (models.Profile, error)
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
}

// RegistryHandler exposes the animal registry, vaccinations and profiles.
type RegistryHandler struct {
	svc    RegistryService
	logger *zap.Logger
}

// NewRegistryHandler constructs the HTTP handler adapter.
func NewRegistryHandler(svc RegistryService, logger *zap.Logger) *RegistryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryHandler{svc: svc, logger: logger}
}

func (h *RegistryHandler) CreateAnimal(c *gin.Context) {
	var in models.Animal
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	animal, err := h.svc.CreateAnimal(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

func (h *RegistryHandler) ListAnimals(c *gin.Context) {
	list, err := h.svc.ListAnimals(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RegistryHandler) GetAnimal(c *gin.Context) {
	animal, err := h.svc.GetAnimal(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

func (h *RegistryHandler) UpdateAnimal(c *gin.Context) {
	var patch models.AnimalPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	animal, err := h.svc.UpdateAnimal(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

func (h *RegistryHandler) DeleteAnimal(c *gin.Context) {
	if err := h.svc.DeleteAnimal(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RegistryHandler) AddWeight(c *gin.Context) {
	var in models.WeightRecord
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	record, err := h.svc.AddWeight(c.Request.Context(), userID(c), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *RegistryHandler) CreateVaccination(c *gin.Context) {
	var in models.Vaccination
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	vaccination, err := h.svc.CreateVaccination(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, vaccination)
}

func (h *RegistryHandler) ListVaccinations(c *gin.Context) {
	list, err := h.svc.ListVaccinations(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RegistryHandler) UpdateVaccination(c *gin.Context) {
	var patch models.VaccinationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	vaccination, err := h.svc.UpdateVaccination(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, vaccination)
}

// CompleteVaccination marks the vaccination administered now.
func (h *RegistryHandler) CompleteVaccination(c *gin.Context) {
	vaccination, err := h.svc.CompleteVaccination(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, vaccination)
}

func (h *RegistryHandler) DeleteVaccination(c *gin.Context) {
	if err := h.svc.DeleteVaccination(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RegistryHandler) GetProfile(c *gin.Context) {
	profile, err := h.svc.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *RegistryHandler) SaveProfile(c *gin.Context) {
	var in models.Profile
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	profile, err := h.svc.SaveProfile(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
