package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cardfolio-backend/internal/clients/gcp"
	errs "github.com/yungbote/cardfolio-backend/internal/pkg/errors"
	"github.com/yungbote/cardfolio-backend/internal/services"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

const maxPhotoUploadBytes = 15 << 20

type PhotoHandler struct {
	directory services.DirectoryService
	avatar    services.AvatarService
	bucket    gcp.BucketService
}

func NewPhotoHandler(directory services.DirectoryService, avatar services.AvatarService, bucket gcp.BucketService) *PhotoHandler {
	return &PhotoHandler{directory: directory, avatar: avatar, bucket: bucket}
}

func (ph *PhotoHandler) UploadOrganizationPhoto(c *gin.Context) {
	ph.upload(c, types.RecordKindOrganization)
}

func (ph *PhotoHandler) UploadPersonPhoto(c *gin.Context) {
	ph.upload(c, types.RecordKindPerson)
}

func (ph *PhotoHandler) upload(c *gin.Context, kind types.RecordKind) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fileHeader.Size > maxPhotoUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(io.LimitReader(file, maxPhotoUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
		return
	}

	photoID := fmt.Sprintf("%s/%s.png", ownerID, uuid.New())
	if ph.bucket != nil {
		body := raw
		if ph.avatar != nil {
			processed, perr := ph.avatar.ProcessUploadedPhoto(raw)
			if perr == nil {
				body = processed.Bytes()
			}
		}
		if uerr := ph.bucket.UploadFile(c.Request.Context(), photoID, bytes.NewReader(body)); uerr != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "photo upload failed"})
			return
		}
	}

	if err := ph.directory.AddPhoto(c.Request.Context(), kind, ownerID, photoID); err != nil {
		if errors.Is(err, errs.ErrAttachmentLimit) {
			c.JSON(http.StatusConflict, gin.H{"error": "attachment limit reached"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"photo_id": photoID}
	if ph.bucket != nil {
		resp["url"] = ph.bucket.GetPublicURL(photoID)
	}
	c.JSON(http.StatusOK, resp)
}

// Download streams a stored photo back to the client. Keys are opaque to the
// client and come from upload/create responses.
func (ph *PhotoHandler) Download(c *gin.Context) {
	if ph.bucket == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo storage not configured"})
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo key is required"})
		return
	}
	reader, err := ph.bucket.DownloadFile(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}
	defer reader.Close()
	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

// attachGeneratedAvatar gives a freshly created record an initials avatar
// when the caller supplied no photo. Best effort: a failed render or upload
// leaves the record photoless.
func attachGeneratedAvatar(c *gin.Context, directory services.DirectoryService, avatar services.AvatarService, kind types.RecordKind, ownerID uuid.UUID, name string) {
	if avatar == nil {
		return
	}
	key, err := avatar.UploadGeneratedAvatar(c.Request.Context(), ownerID, name)
	if err != nil {
		return
	}
	_ = directory.AddPhoto(c.Request.Context(), kind, ownerID, key)
}

// purgePhotos removes every stored object under a deleted record's key
// prefix. Best effort: orphaned objects are harmless.
func purgePhotos(c *gin.Context, bucket gcp.BucketService, ownerID uuid.UUID) {
	if bucket == nil {
		return
	}
	_ = bucket.DeletePrefix(c.Request.Context(), ownerID.String()+"/")
}
