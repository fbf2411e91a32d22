package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardfolio-backend/internal/services"
)

type TagHandler struct {
	directory services.DirectoryService
}

func NewTagHandler(directory services.DirectoryService) *TagHandler {
	return &TagHandler{directory: directory}
}

// List returns the tag pool, optionally narrowed by a prefix for
// autocomplete.
func (th *TagHandler) List(c *gin.Context) {
	prefix := strings.ToLower(strings.TrimSpace(c.Query("prefix")))
	tags := th.directory.TagPool()
	if prefix != "" {
		narrowed := make([]string, 0, len(tags))
		for _, tag := range tags {
			if strings.HasPrefix(strings.ToLower(tag), prefix) {
				narrowed = append(narrowed, tag)
			}
		}
		tags = narrowed
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
