package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spotcheck/spotfeed/internal/feed"
	"github.com/spotcheck/spotfeed/internal/store"
)

// writeError translates the feed error taxonomy to HTTP statuses: absent
// documents are 404, unresolvable references 422, corruption 500 and store
// transport failures 502.
func writeError(c *gin.Context, err error) {
	var resolution *feed.ResolutionError
	var integrity *feed.DataIntegrityError

	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting concurrent write"})
	case errors.As(err, &integrity):
		c.JSON(http.StatusInternalServerError, gin.H{"error": integrity.Error()})
	case errors.As(err, &resolution):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": resolution.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
