package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/addons-front/listing-api/internal/listing"
	internalsettings "github.com/addons-front/listing-api/internal/settings"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// editableSettings lists the keys editors may change.
var editableSettings = map[string]struct{}{
	internalsettings.LearnMoreURLKey:        {},
	internalsettings.CardCacheTTLSecondsKey: {},
}

// SettingHandler updates DB-backed runtime settings.
type SettingHandler struct {
	db  *gorm.DB
	svc *listing.Service
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(db *gorm.DB, svc *listing.Service) *SettingHandler {
	return &SettingHandler{db: db, svc: svc}
}

type putSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// Put stores the JSON value of setting :key.
func (h *SettingHandler) Put(c *gin.Context) {
	key := strings.ToUpper(strings.TrimSpace(c.Param("key")))
	if _, ok := editableSettings[key]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown setting"})
		return
	}
	var req putSettingRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil || len(req.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	ctx := c.Request.Context()
	if errPut := internalsettings.Put(ctx, h.db, key, req.Value); errPut != nil {
		log.WithError(errPut).WithField("key", key).Warn("update setting failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update setting failed"})
		return
	}
	h.svc.TableChanged(ctx)
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}
