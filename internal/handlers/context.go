package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// siteQuery splits the comma-separated `sites` query parameter.
func siteQuery(c *gin.Context) []string {
	raw := strings.TrimSpace(c.Query("sites"))
	if raw == "" {
		return nil
	}

	var sites []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			sites = append(sites, part)
		}
	}
	return sites
}
