// Package api wires the HTTP surface: gin routes, auth middleware,
// error mapping and the wire DTOs.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChiefGuap/divvit2.0/internal/auth"
)

// Deps bundles everything the router needs.
type Deps struct {
	Auth       *AuthHandlers
	Bills      *BillHandlers
	Scans      *ScanHandlers
	JWTManager *auth.JWTManager
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), metrics(), cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", deps.Auth.Register)
	v1.POST("/auth/login", deps.Auth.Login)

	authed := v1.Group("", requireAuth(deps.JWTManager))
	{
		authed.POST("/bills", deps.Bills.Create)
		authed.GET("/bills/:id", deps.Bills.Get)
		authed.DELETE("/bills/:id", deps.Bills.Delete)
		authed.GET("/bills/:id/events", deps.Bills.Events)

		authed.POST("/bills/:id/join", deps.Bills.Join)
		authed.POST("/bills/:id/participants", deps.Bills.AddGuest)
		authed.PATCH("/bills/:id/participants/:pid", deps.Bills.RenameParticipant)
		authed.DELETE("/bills/:id/participants/:pid", deps.Bills.RemoveParticipant)

		authed.POST("/bills/:id/items", deps.Bills.AddItem)
		authed.PATCH("/bills/:id/items/:itemID", deps.Bills.UpdateItem)
		authed.DELETE("/bills/:id/items/:itemID", deps.Bills.DeleteItem)

		authed.POST("/bills/:id/assignments/toggle", deps.Bills.ToggleAssignment)
		authed.POST("/bills/:id/assignments/split-evenly", deps.Bills.SplitEvenly)
		authed.POST("/bills/:id/assignments/randomize", deps.Bills.Randomize)

		authed.PUT("/bills/:id/tip", deps.Bills.SetTip)
		authed.PUT("/bills/:id/tax", deps.Bills.SetTax)

		authed.POST("/bills/:id/share", deps.Bills.Share)
		authed.POST("/bills/:id/start", deps.Bills.Start)
		authed.POST("/bills/:id/close", deps.Bills.Close)
		authed.GET("/bills/:id/settlement", deps.Bills.GetSettlement)

		authed.POST("/bills/:id/paid/:pid", deps.Bills.MarkPaid)
		authed.GET("/bills/:id/totals", deps.Bills.Totals)

		authed.POST("/receipts/scan", deps.Scans.Scan)
	}

	return router
}
