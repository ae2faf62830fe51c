package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/vkoski/infotools/config"
	"github.com/vkoski/infotools/llmtools"
	"github.com/vkoski/infotools/logging"
	"github.com/vkoski/infotools/metrics"
	"github.com/vkoski/infotools/toolkit"
)

var startTime time.Time

// Run builds the tool registry, wires up the HTTP surface and serves it.
// Blocks until the server stops.
func Run(cfg config.Config) error {
	startTime = time.Now()

	registry := newRegistry(cfg)
	router := newRouter(registry)

	log.Info().Str("addr", cfg.ListenAddr).Int("tools", len(registry.Definitions())).Msg("Starting HTTP server")
	return router.Run(cfg.ListenAddr)
}

func newRouter(registry *toolkit.Registry) *gin.Engine {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(requestLoggingMiddleware())

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/healthcheck", healthCheckHandler)
		apiGroup.GET("/tools", listToolsHandler(registry))
		apiGroup.POST("/tools/:name", invokeToolHandler(registry))
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// newRegistry constructs all clients from the configuration and registers
// every tool into a fresh registry.
func newRegistry(cfg config.Config) *toolkit.Registry {
	geo := llmtools.NewGeoClient(cfg)
	weather := llmtools.NewWeatherClient(cfg)

	registry := toolkit.NewRegistry()
	registry.Register(llmtools.IPLocationToolDefinition(geo))
	registry.Register(llmtools.MyIPLocationToolDefinition(geo))
	registry.Register(llmtools.WhoisToolDefinition)
	registry.Register(llmtools.BatchWhoisToolDefinition)
	registry.Register(llmtools.DomainAvailabilityToolDefinition)
	registry.Register(llmtools.SystemInfoToolDefinition)
	registry.Register(llmtools.WeatherToolDefinition(weather))
	return registry
}

// healthCheckResponse represents the response from the healthcheck endpoint
type healthCheckResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, healthCheckResponse{
		Status: "ok",
		Uptime: time.Since(startTime).Round(time.Second).String(),
	})
}

func listToolsHandler(registry *toolkit.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tools": registry.Definitions()})
	}
}

// toolResponse represents the reply to one tool invocation
type toolResponse struct {
	Tool     string `json:"tool"`
	Response string `json:"response"`
}

// invokeToolHandler invokes the named tool with the request body as the JSON
// arguments object. The reply is always 200 with a textual response; tool
// failures are part of the response text, never HTTP errors.
func invokeToolHandler(registry *toolkit.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			log.Error().Ctx(c.Request.Context()).Err(err).Str("tool", name).Msg("Failed to read tool invocation body")
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}

		arguments := string(body)
		if arguments == "" {
			arguments = "{}"
		}

		ctx := logging.ContextWithStr(c.Request.Context(), "tool", name)
		response := registry.Invoke(ctx, name, arguments)

		c.JSON(http.StatusOK, toolResponse{Tool: name, Response: response})
	}
}

// requestLoggingMiddleware logs HTTP requests using zerolog and records
// request metrics
func requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), status, latency.Seconds())

		log.Debug().
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
