// Package router wires the gateway's gin engine: middleware chain, public
// chat/models routes, operator-facing probe/discovery routes, and the
// Prometheus scrape endpoint.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Chyrain/LLMGateway/common/graceful"
	"github.com/Chyrain/LLMGateway/controller"
	"github.com/Chyrain/LLMGateway/middleware"
	"github.com/Chyrain/LLMGateway/model"
	"github.com/Chyrain/LLMGateway/relay/dispatch"
)

// New builds the gateway's gin.Engine over repo, wiring controller.Repo and
// controller.Engine before any route is registered.
func New(repo model.ModelRepository) *gin.Engine {
	controller.Repo = repo
	controller.Engine = dispatch.New(repo)

	r := gin.New()
	r.Use(middleware.Recover())
	r.Use(middleware.RequestId())
	r.Use(graceful.GinRequestTracker())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(middleware.GatewayAuth())
	{
		v1.POST("/chat/completions", controller.ChatCompletions)
		v1.GET("/models", controller.ListModels)
	}

	relayGroup := r.Group("/relay")
	relayGroup.Use(middleware.GatewayAuth())
	{
		relayGroup.POST("/models/:id/probe", controller.ProbeModel)
	}

	internalGroup := r.Group("/internal")
	internalGroup.Use(middleware.GatewayAuth())
	{
		internalGroup.GET("/vendors/:vendor/models", controller.ListVendorModels)
	}

	return r
}
