package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/memoria/internal/common"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/server/memories"
	"github.com/dmitrijs2005/memoria/internal/server/uploads"
	"github.com/dmitrijs2005/memoria/internal/wire"
	"github.com/gin-gonic/gin"
)

// writeError maps err to a status and a short message. Details of server
// failures go to the log only.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "internal error"

	switch {
	case errors.Is(err, uploads.ErrInvalidRequest),
		errors.Is(err, memories.ErrInvalidContent),
		errors.Is(err, memories.ErrInvalidSlug),
		errors.Is(err, memories.ErrInvalidStatus):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrSlugTaken):
		status, msg = http.StatusConflict, "slug already taken"
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		status, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, media.ErrNegotiation):
		msg = "could not create upload URL"
	case errors.Is(err, media.ErrDeletion):
		msg = "could not delete file"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, wire.ErrorResponse{Error: msg})
}
