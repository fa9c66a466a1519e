package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/memoria/internal/server/memories"
	"github.com/dmitrijs2005/memoria/internal/server/models"
	"github.com/dmitrijs2005/memoria/internal/wire"
	"github.com/gin-gonic/gin"
)

// badJSON answers a body that failed to decode. The decoder's text stays in
// the log.
func (s *HTTPServer) badJSON(c *gin.Context, err error) {
	s.logger.Debug(c.Request.Context(), "malformed request body", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: errMalformedBody})
}

const errMalformedBody = "malformed request body"

func (s *HTTPServer) presign(c *gin.Context) {
	var req wire.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badJSON(c, err)
		return
	}

	grant, err := s.uploads.Negotiate(c.Request.Context(), req.FileName, req.FileType, req.Folder)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

func (s *HTTPServer) deleteUpload(c *gin.Context) {
	var req wire.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badJSON(c, err)
		return
	}

	if err := s.uploads.DeleteByPublicURL(c.Request.Context(), req.URL); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, wire.DeleteResponse{Success: true})
}

func toWire(m *models.Memory) wire.Memory {
	return wire.Memory{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Slug:      m.Slug,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt.UnixMilli(),
		Content:   m.Content,
	}
}

func (s *HTTPServer) listMemories(c *gin.Context) {
	list, err := s.memories.ListByOwner(c.Request.Context(), ownerID(c), models.Status(c.Query("status")))
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := wire.MemoryList{Memories: make([]wire.Memory, 0, len(list))}
	for _, m := range list {
		resp.Memories = append(resp.Memories, toWire(m))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) createMemory(c *gin.Context) {
	var req wire.CreateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badJSON(c, err)
		return
	}

	m, err := s.memories.Create(c.Request.Context(), ownerID(c), memories.CreateInput{
		Slug:    req.Slug,
		Status:  models.Status(req.Status),
		Content: req.Content,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toWire(m))
}

func (s *HTTPServer) getMemory(c *gin.Context) {
	m, err := s.memories.GetByID(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWire(m))
}

func (s *HTTPServer) updateMemory(c *gin.Context) {
	var req wire.UpdateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badJSON(c, err)
		return
	}

	p := memories.Patch{Slug: req.Slug, Content: req.Content}
	if req.Status != nil {
		st := models.Status(*req.Status)
		p.Status = &st
	}

	m, err := s.memories.Update(c.Request.Context(), ownerID(c), c.Param("id"), p)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWire(m))
}

func (s *HTTPServer) updateStatus(c *gin.Context) {
	var req wire.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badJSON(c, err)
		return
	}

	m, err := s.memories.UpdateStatus(c.Request.Context(), ownerID(c), c.Param("id"), models.Status(req.Status))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWire(m))
}

func (s *HTTPServer) deleteMemory(c *gin.Context) {
	if err := s.memories.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) getPublicMemory(c *gin.Context) {
	m, err := s.memories.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := toWire(m)
	// the owner stays private on the public page
	out.OwnerID = ""
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) slugAvailability(c *gin.Context) {
	slug := c.Param("slug")
	ok, err := s.memories.CheckSlugAvailability(c.Request.Context(), slug)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.SlugAvailability{Slug: slug, Available: ok})
}

func (s *HTTPServer) stats(c *gin.Context) {
	st, err := s.memories.Stats(c.Request.Context(), ownerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.Stats{
		Total:      st.Total,
		Drafts:     st.Drafts,
		Published:  st.Published,
		Archived:   st.Archived,
		TotalViews: st.TotalViews,
	})
}
