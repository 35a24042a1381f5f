package front

import (
	"github.com/addons-front/listing-api/internal/http/api/front/handlers"
	"github.com/addons-front/listing-api/internal/listing"
	"github.com/gin-gonic/gin"
)

// RegisterFrontRoutes registers the public listing routes.
func RegisterFrontRoutes(r *gin.Engine, svc *listing.Service) {
	if r == nil || svc == nil {
		return
	}

	front := r.Group("/v0/front")

	permissionsHandler := handlers.NewPermissionsHandler(svc)
	front.GET("/versions/:id/permissions", permissionsHandler.Grouped)
	front.GET("/versions/:id/permissions-card", permissionsHandler.Card)
	front.POST("/permissions/group", permissionsHandler.GroupInline)
}
