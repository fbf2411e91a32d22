package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cardfolio-backend/internal/clients/gcp"
	"github.com/yungbote/cardfolio-backend/internal/services"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

type OrganizationHandler struct {
	directory services.DirectoryService
	avatar    services.AvatarService
	bucket    gcp.BucketService
}

func NewOrganizationHandler(directory services.DirectoryService, avatar services.AvatarService, bucket gcp.BucketService) *OrganizationHandler {
	return &OrganizationHandler{directory: directory, avatar: avatar, bucket: bucket}
}

func (oh *OrganizationHandler) List(c *gin.Context) {
	query := c.Query("q")
	orgs := oh.directory.Organizations()
	filtered := make([]*types.Organization, 0, len(orgs))
	for _, org := range orgs {
		if matchesQuery(query, org.Name, org.OriginalName, org.Industry, org.Location, org.Notes, joined(org.Tags)) {
			filtered = append(filtered, org)
		}
	}
	c.JSON(http.StatusOK, gin.H{"organizations": filtered})
}

func (oh *OrganizationHandler) Get(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
		return
	}
	org := oh.directory.GetOrganization(orgID)
	if org == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org})
}

func (oh *OrganizationHandler) Create(c *gin.Context) {
	var org types.Organization
	if err := c.ShouldBindJSON(&org); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if org.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	created := oh.directory.CreateOrganization(c.Request.Context(), &org)
	if len(created.PhotoIDs) == 0 {
		attachGeneratedAvatar(c, oh.directory, oh.avatar, types.RecordKindOrganization, created.ID, created.Name)
		created = oh.directory.GetOrganization(created.ID)
	}
	c.JSON(http.StatusOK, gin.H{"organization": created})
}

func (oh *OrganizationHandler) Update(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
		return
	}
	var org types.Organization
	if err := c.ShouldBindJSON(&org); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	org.ID = orgID
	oh.directory.UpdateOrganization(c.Request.Context(), &org)
	updated := oh.directory.GetOrganization(orgID)
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": updated})
}

func (oh *OrganizationHandler) Delete(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
		return
	}
	oh.directory.DeleteOrganization(c.Request.Context(), orgID)
	purgePhotos(c, oh.bucket, orgID)
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}
