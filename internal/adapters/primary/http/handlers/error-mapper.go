package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thorrester/cardstore/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrOwnershipConflict),
		errors.Is(err, domain.ErrDuplicateRegistration),
		errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrVersionOutOfOrder):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidVersion),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidTeam),
		errors.Is(err, domain.ErrTypeMismatch),
		errors.Is(err, domain.ErrUnsupportedArtifact),
		errors.Is(err, domain.ErrAmbiguousResult):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
