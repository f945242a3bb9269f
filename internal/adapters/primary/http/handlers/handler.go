package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
	"github.com/thorrester/cardstore/internal/core/registry"
)

// Handler exposes the card registries and the artifact file proxy over
// HTTP. One registry per table, keyed by card type.
type Handler struct {
	registries map[domain.CardType]*registry.Registry
	storage    ports.StorageBackend
}

func New(registries map[domain.CardType]*registry.Registry, storage ports.StorageBackend) *Handler {
	return &Handler{registries: registries, storage: storage}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Card records
	r.GET("/registries/:type/cards", h.ListCards)
	r.POST("/registries/:type/cards", h.RegisterCard)
	r.PATCH("/registries/:type/cards/:uid", h.UpdateCard)
	r.DELETE("/registries/:type/cards/:uid", h.DeleteCard)

	// Listings
	r.GET("/registries/:type/teams", h.ListTeams)
	r.GET("/registries/:type/names", h.ListNames)

	// Artifact files (remote storage proxy)
	r.PUT("/files", h.PutFile)
	r.GET("/files", h.GetFile)
	r.HEAD("/files", h.StatFile)
	r.GET("/files/list", h.ListFiles)
}

func (h *Handler) registryFor(c *gin.Context) (*registry.Registry, bool) {
	cardType := domain.CardType(c.Param("type"))
	reg, ok := h.registries[cardType]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown registry type: " + string(cardType)})
		return nil, false
	}
	return reg, true
}
