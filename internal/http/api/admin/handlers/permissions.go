package handlers

import (
	"net/http"
	"strings"

	"github.com/addons-front/listing-api/internal/catalog"
	"github.com/addons-front/listing-api/internal/listing"
	"github.com/addons-front/listing-api/internal/permissions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// PermissionHandler manages permission displayability for editors.
type PermissionHandler struct {
	store *catalog.Store
	svc   *listing.Service
}

// NewPermissionHandler constructs a PermissionHandler.
func NewPermissionHandler(store *catalog.Store, svc *listing.Service) *PermissionHandler {
	return &PermissionHandler{store: store, svc: svc}
}

// List returns the known vocabulary with effective displayability and overrides.
func (h *PermissionHandler) List(c *gin.Context) {
	overrides, err := h.store.ListOverrides(c.Request.Context())
	if err != nil {
		log.WithError(err).Warn("list permission overrides failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list overrides failed"})
		return
	}
	table := permissions.DefaultTable().With(overrides)

	defs := permissions.Definitions()
	out := make([]gin.H, 0, len(defs))
	for _, def := range defs {
		item := gin.H{
			"key":         def.Key,
			"description": def.Description,
			"displayable": table.Displayable(def.Key),
			"default":     def.Displayable,
		}
		if _, ok := overrides[def.Key]; ok {
			item["overridden"] = true
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{
		"permissions": out,
		"overrides":   overrides,
		"hidden":      table.Hidden(),
	})
}

type setOverrideRequest struct {
	Displayable *bool `json:"displayable"`
}

// SetOverride stores a displayability override for :key.
func (h *PermissionHandler) SetOverride(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing permission key"})
		return
	}
	var req setOverrideRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil || req.Displayable == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "displayable is required"})
		return
	}

	ctx := c.Request.Context()
	if errSet := h.store.SetOverride(ctx, key, *req.Displayable); errSet != nil {
		log.WithError(errSet).WithField("key", key).Warn("set permission override failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "set override failed"})
		return
	}
	h.svc.TableChanged(ctx)
	log.WithFields(log.Fields{"key": key, "displayable": *req.Displayable, "editor": c.GetString("editor")}).Info("permission override set")
	c.JSON(http.StatusOK, gin.H{"key": key, "displayable": *req.Displayable})
}

// DeleteOverride restores the built-in displayability of :key.
func (h *PermissionHandler) DeleteOverride(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	ctx := c.Request.Context()
	removed, err := h.store.DeleteOverride(ctx, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("delete permission override failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete override failed"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "override not found"})
		return
	}
	h.svc.TableChanged(ctx)
	c.Status(http.StatusNoContent)
}
