package admin

import (
	"github.com/addons-front/listing-api/internal/catalog"
	"github.com/addons-front/listing-api/internal/config"
	"github.com/addons-front/listing-api/internal/http/api/admin/handlers"
	"github.com/addons-front/listing-api/internal/listing"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers the editor-only catalog routes.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, store *catalog.Store, svc *listing.Service) {
	if r == nil || db == nil || store == nil || svc == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	admin := r.Group("/v0/admin")
	admin.Use(editorAuthMiddleware(jwtCfg))

	permissionHandler := handlers.NewPermissionHandler(store, svc)
	admin.GET("/permissions", permissionHandler.List)
	admin.PUT("/permissions/:key", permissionHandler.SetOverride)
	admin.DELETE("/permissions/:key", permissionHandler.DeleteOverride)

	versionHandler := handlers.NewVersionHandler(store, svc)
	admin.GET("/versions", versionHandler.List)
	admin.PUT("/versions/:id", versionHandler.Put)

	settingHandler := handlers.NewSettingHandler(db, svc)
	admin.PUT("/settings/:key", settingHandler.Put)
}
