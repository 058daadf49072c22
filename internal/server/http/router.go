package http

import (
	"net/http"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.corsMiddleware())
	r.Use(requestid.New(requestid.WithCustomHeaderStrKey(common.RequestIDHeaderName)))
	r.Use(s.accessLogMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)
	authGroup.POST("/logout", s.tokenAuthMiddleware(false), s.logout)

	conf := api.Group("/serverconf", s.tokenAuthMiddleware(true))
	conf.GET("", s.listServers)
	conf.GET("/:serverId/allnodes/:icon", s.getNode)
	conf.POST("/:serverId/allnodes/:icon", s.postNode)

	return r
}
