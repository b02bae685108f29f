package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"calendar-api/internal/service"
)

type ExportResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	URL          string  `json:"url"`
	LastModified *string `json:"last_modified,omitempty"`
}

func exportToResponse(export service.Export) ExportResponse {
	resp := ExportResponse{
		Key:  export.Key,
		Size: export.Size,
		URL:  export.URL,
	}
	if export.LastModified != nil && !export.LastModified.IsZero() {
		v := export.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func (h *Handler) createExport(c *gin.Context) {
	if h.exports == nil {
		h.writeError(c, service.ErrExportsDisabled)
		return
	}

	export, err := h.exports.Export(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exportToResponse(*export))
}

func (h *Handler) listExports(c *gin.Context) {
	if h.exports == nil {
		h.writeError(c, service.ErrExportsDisabled)
		return
	}

	exports, err := h.exports.ListExports(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ExportResponse, len(exports))
	for i := range exports {
		resp[i] = exportToResponse(exports[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteExports(c *gin.Context) {
	if h.exports == nil {
		h.writeError(c, service.ErrExportsDisabled)
		return
	}

	if err := h.exports.DeleteExports(c.Request.Context(), identityFrom(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
