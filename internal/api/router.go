package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stationops/nowplayd/pkg/auth"
)

// SetupRouter builds the status API router. When username is non-empty the
// endpoints require basic auth.
func SetupRouter(handler *Handler, username, password string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	if username != "" {
		router.Use(basicAuth(username, password))
	}

	router.GET("/health", handler.HealthCheck)
	router.GET("/status", handler.Status)
	router.GET("/history", handler.History)

	return router
}

func basicAuth(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.ValidateBasicAuth(c.GetHeader("Authorization"), username, password) {
			c.Header("WWW-Authenticate", `Basic realm="nowplayd"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
