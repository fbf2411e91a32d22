package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cardfolio-backend/internal/clients/gcp"
	"github.com/yungbote/cardfolio-backend/internal/services"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

type PersonHandler struct {
	directory services.DirectoryService
	avatar    services.AvatarService
	bucket    gcp.BucketService
}

func NewPersonHandler(directory services.DirectoryService, avatar services.AvatarService, bucket gcp.BucketService) *PersonHandler {
	return &PersonHandler{directory: directory, avatar: avatar, bucket: bucket}
}

func (ph *PersonHandler) List(c *gin.Context) {
	query := c.Query("q")
	people := ph.directory.People()
	filtered := make([]*types.Person, 0, len(people))
	for _, person := range people {
		if matchesQuery(query, person.Name, person.OriginalName, person.Title, person.OrgName, person.Email, person.Notes, joined(person.Tags)) {
			filtered = append(filtered, person)
		}
	}
	c.JSON(http.StatusOK, gin.H{"people": filtered})
}

func (ph *PersonHandler) Get(c *gin.Context) {
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}
	person := ph.directory.GetPerson(personID)
	if person == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"person": person})
}

// Create checks the directory for an existing contact with the same email,
// phone or name before inserting. Callers resolve a detected duplicate either
// by merging into it (merge_into) or by forcing a separate record (force).
func (ph *PersonHandler) Create(c *gin.Context) {
	var req struct {
		types.Person
		MergeInto *uuid.UUID `json:"merge_into,omitempty"`
		Force     bool       `json:"force,omitempty"`
		PhotoIDs  []string   `json:"photo_ids,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if req.MergeInto != nil {
		merged := ph.directory.MergePerson(c.Request.Context(), *req.MergeInto, &req.Person, req.PhotoIDs)
		if merged == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "merge target not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"person": merged, "merged": true})
		return
	}
	if !req.Force {
		if dup := ph.directory.FindDuplicatePerson(req.Name, req.Phone, req.Email); dup != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "possible duplicate", "duplicate": dup})
			return
		}
	}
	req.Person.PhotoIDs = req.PhotoIDs
	created := ph.directory.CreatePerson(c.Request.Context(), &req.Person)
	if len(created.PhotoIDs) == 0 {
		attachGeneratedAvatar(c, ph.directory, ph.avatar, types.RecordKindPerson, created.ID, created.Name)
		created = ph.directory.GetPerson(created.ID)
	}
	c.JSON(http.StatusOK, gin.H{"person": created})
}

func (ph *PersonHandler) Update(c *gin.Context) {
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}
	var person types.Person
	if err := c.ShouldBindJSON(&person); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	person.ID = personID
	ph.directory.UpdatePerson(c.Request.Context(), &person)
	updated := ph.directory.GetPerson(personID)
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"person": updated})
}

func (ph *PersonHandler) Delete(c *gin.Context) {
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}
	ph.directory.DeletePerson(c.Request.Context(), personID)
	purgePhotos(c, ph.bucket, personID)
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (ph *PersonHandler) Link(c *gin.Context) {
	personID, orgID, ok := ph.linkIDs(c)
	if !ok {
		return
	}
	ph.directory.LinkPerson(c.Request.Context(), personID, orgID)
	c.JSON(http.StatusOK, gin.H{"person": ph.directory.GetPerson(personID)})
}

func (ph *PersonHandler) Unlink(c *gin.Context) {
	personID, orgID, ok := ph.linkIDs(c)
	if !ok {
		return
	}
	ph.directory.UnlinkPerson(c.Request.Context(), personID, orgID)
	c.JSON(http.StatusOK, gin.H{"person": ph.directory.GetPerson(personID)})
}

func (ph *PersonHandler) linkIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return uuid.Nil, uuid.Nil, false
	}
	orgID, err := uuid.Parse(c.Param("orgID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
		return uuid.Nil, uuid.Nil, false
	}
	return personID, orgID, true
}
