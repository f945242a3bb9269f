package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/thorrester/cardstore/internal/core/domain"
	"github.com/thorrester/cardstore/internal/core/registry"
	"github.com/thorrester/cardstore/internal/core/semver"
)

type registerCardRequest struct {
	Record                  domain.CardRecord `json:"record"`
	VersionType             string            `json:"version_type"`
	Version                 string            `json:"version"`
	PreTag                  string            `json:"pre_tag"`
	BuildTag                string            `json:"build_tag"`
	IgnoreReleaseCandidates bool              `json:"ignore_release_candidates"`
}

func (h *Handler) ListCards(c *gin.Context) {
	reg, ok := h.registryFor(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	ignoreRC, _ := strconv.ParseBool(c.DefaultQuery("ignore_release_candidates", "false"))

	filter := domain.CardFilter{
		UID:                     c.Query("uid"),
		Name:                    c.Query("name"),
		Team:                    c.Query("team"),
		Version:                 c.Query("version"),
		MaxDate:                 c.Query("max_date"),
		Limit:                   limit,
		IgnoreReleaseCandidates: ignoreRC,
	}

	records, err := reg.ListCards(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list cards failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": records})
}

func (h *Handler) RegisterCard(c *gin.Context) {
	reg, ok := h.registryFor(c)
	if !ok {
		return
	}

	var req registerCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := registry.RegisterOpts{
		VersionType:             semver.VersionType(req.VersionType),
		IgnoreReleaseCandidates: req.IgnoreReleaseCandidates,
	}
	if req.Version != "" || req.PreTag != "" || req.BuildTag != "" {
		opts.Version = &semver.CardVersion{
			Version:  req.Version,
			PreTag:   req.PreTag,
			BuildTag: req.BuildTag,
		}
	}

	if err := reg.RegisterRecord(c.Request.Context(), &req.Record, opts); err != nil {
		log.WithError(err).Error("register card failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req.Record)
}

func (h *Handler) UpdateCard(c *gin.Context) {
	reg, ok := h.registryFor(c)
	if !ok {
		return
	}

	var rec domain.CardRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec.UID = c.Param("uid")

	if err := reg.UpdateRecord(c.Request.Context(), &rec); err != nil {
		log.WithError(err).Error("update card failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteCard(c *gin.Context) {
	reg, ok := h.registryFor(c)
	if !ok {
		return
	}

	if err := reg.DeleteCard(c.Request.Context(), c.Param("uid")); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTeams(c *gin.Context) {
	reg, ok := h.registryFor(c)
	if !ok {
		return
	}

	teams, err := reg.ListTeams(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (h *Handler) ListNames(c *gin.Context) {
	reg, ok := h.registryFor(c)
	if !ok {
		return
	}

	names, err := reg.ListCardNames(c.Request.Context(), c.Query("team"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"names": names})
}
