package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/addons-front/listing-api/internal/catalog"
	"github.com/addons-front/listing-api/internal/listing"
	"github.com/addons-front/listing-api/internal/permissions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// maxInlineVersionBytes bounds the body of inline grouping requests.
const maxInlineVersionBytes = 1 << 20

// PermissionsHandler serves permission views of listing versions.
type PermissionsHandler struct {
	svc *listing.Service
}

// NewPermissionsHandler constructs a PermissionsHandler.
func NewPermissionsHandler(svc *listing.Service) *PermissionsHandler {
	return &PermissionsHandler{svc: svc}
}

// groupedResponse is the grouped permission payload.
type groupedResponse struct {
	Required     []string `json:"required"`
	Optional     []string `json:"optional"`
	ShouldRender bool     `json:"should_render"`
}

func newGroupedResponse(g permissions.Grouped) groupedResponse {
	return groupedResponse{Required: g.Required, Optional: g.Optional, ShouldRender: g.ShouldRender()}
}

// Grouped returns the displayable required and optional permissions of a version.
func (h *PermissionsHandler) Grouped(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	grouped, err := h.svc.Grouped(c.Request.Context(), id)
	if err != nil {
		writeLoadError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, newGroupedResponse(grouped))
}

// Card returns the permissions card view model of a version.
func (h *PermissionsHandler) Card(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	built, err := h.svc.Card(c.Request.Context(), id)
	if err != nil {
		writeLoadError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, built)
}

// GroupInline groups a version posted in the body. A JSON null body groups to nothing.
func (h *PermissionsHandler) GroupInline(c *gin.Context) {
	body, errRead := io.ReadAll(io.LimitReader(c.Request.Body, maxInlineVersionBytes+1))
	if errRead != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}
	if len(body) > maxInlineVersionBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
		return
	}

	var version *permissions.Version
	if len(body) > 0 {
		if errUnmarshal := json.Unmarshal(body, &version); errUnmarshal != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version payload"})
			return
		}
	}
	grouped, err := h.svc.GroupInline(c.Request.Context(), version)
	if err != nil {
		log.WithError(err).Warn("group inline version failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load permission table failed"})
		return
	}
	c.JSON(http.StatusOK, newGroupedResponse(grouped))
}

func writeLoadError(c *gin.Context, id uint64, err error) {
	if errors.Is(err, catalog.ErrVersionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "version not found"})
		return
	}
	log.WithError(err).WithField("version_id", id).Warn("load version permissions failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "load version failed"})
}
