package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl marks public catalog responses as cacheable by browsers and CDNs.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAgeSeconds))
		c.Next()
	}
}

// NoStore disables caching for responses carrying personal data.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
