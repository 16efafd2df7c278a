package tools

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP surface over a tool registry. Tool errors
// come back as error-flagged 200 responses so agent frontends can relay
// them; only transport-level problems use error statuses.
func NewRouter(reg *Registry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/tools", func(c *gin.Context) {
		list := reg.List()
		descriptors := make([]gin.H, 0, len(list))
		for _, t := range list {
			descriptors = append(descriptors, gin.H{
				"name":        t.Name,
				"description": t.Description,
				"inputSchema": t.InputSchema,
			})
		}
		c.JSON(http.StatusOK, gin.H{"tools": descriptors})
	})

	router.POST("/tools/:name", func(c *gin.Context) {
		name := c.Param("name")
		if _, ok := reg.Get(name); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown tool: %s", name)})
			return
		}

		args := map[string]any{}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&args); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
				return
			}
		}

		result, err := reg.Call(c.Request.Context(), name, args)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"error": err.Error(), "isError": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": result})
	})

	return router
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
