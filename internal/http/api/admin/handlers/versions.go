package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/addons-front/listing-api/internal/catalog"
	"github.com/addons-front/listing-api/internal/listing"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// VersionHandler lets editors load listing versions into the catalog.
type VersionHandler struct {
	store *catalog.Store
	svc   *listing.Service
}

// NewVersionHandler constructs a VersionHandler.
func NewVersionHandler(store *catalog.Store, svc *listing.Service) *VersionHandler {
	return &VersionHandler{store: store, svc: svc}
}

// List returns versions, optionally filtered by ?search= on the addon slug.
func (h *VersionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.store.ListVersions(c.Request.Context(), c.Query("search"), limit)
	if err != nil {
		log.WithError(err).Warn("list versions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list versions failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": list})
}

// Put creates or replaces version :id.
func (h *VersionHandler) Put(c *gin.Context) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version id"})
		return
	}
	var req catalog.VersionInput
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version payload"})
		return
	}
	if strings.TrimSpace(req.AddonSlug) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "addon_slug is required"})
		return
	}

	ctx := c.Request.Context()
	if errSave := h.store.SaveVersion(ctx, id, req); errSave != nil {
		log.WithError(errSave).WithField("version_id", id).Warn("save version failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save version failed"})
		return
	}
	h.svc.VersionChanged(ctx, id)
	c.JSON(http.StatusOK, gin.H{"id": id, "files": len(req.Files)})
}
