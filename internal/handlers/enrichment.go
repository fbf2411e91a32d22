package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	errs "github.com/yungbote/cardfolio-backend/internal/pkg/errors"
	"github.com/yungbote/cardfolio-backend/internal/services"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

type EnrichmentHandler struct {
	enrichment services.EnrichmentService
	directory  services.DirectoryService
}

func NewEnrichmentHandler(enrichment services.EnrichmentService, directory services.DirectoryService) *EnrichmentHandler {
	return &EnrichmentHandler{enrichment: enrichment, directory: directory}
}

func (eh *EnrichmentHandler) EnrichOrganization(c *gin.Context) {
	eh.start(c, types.RecordKindOrganization)
}

func (eh *EnrichmentHandler) EnrichPerson(c *gin.Context) {
	eh.start(c, types.RecordKindPerson)
}

func (eh *EnrichmentHandler) start(c *gin.Context, kind types.RecordKind) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	if err := eh.enrichment.Start(c.Request.Context(), kind, recordID); err != nil {
		switch {
		case errors.Is(err, errs.ErrEnrichmentActive):
			c.JSON(http.StatusConflict, gin.H{"error": "enrichment already in progress"})
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": eh.enrichment.Status()})
}

func (eh *EnrichmentHandler) Status(c *gin.Context) {
	status := eh.enrichment.Status()
	c.JSON(http.StatusOK, gin.H{"status": status, "progress": status.Progress()})
}

func (eh *EnrichmentHandler) RevertOrganization(c *gin.Context) {
	eh.revert(c, types.RecordKindOrganization)
}

func (eh *EnrichmentHandler) RevertPerson(c *gin.Context) {
	eh.revert(c, types.RecordKindPerson)
}

func (eh *EnrichmentHandler) revert(c *gin.Context, kind types.RecordKind) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	if !eh.directory.RevertEnrichment(c.Request.Context(), kind, recordID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found or not enriched"})
		return
	}
	switch kind {
	case types.RecordKindOrganization:
		c.JSON(http.StatusOK, gin.H{"organization": eh.directory.GetOrganization(recordID)})
	default:
		c.JSON(http.StatusOK, gin.H{"person": eh.directory.GetPerson(recordID)})
	}
}
