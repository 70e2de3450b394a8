package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/bannerworks/alertbanner/internal/auth"
	"github.com/bannerworks/alertbanner/internal/realtime"
	"github.com/bannerworks/alertbanner/pkg/errors"
	"github.com/bannerworks/alertbanner/pkg/response"
)

// RealtimeHandler upgrades HTTP connections into authenticated WebSocket
// streams carrying alert events for the subscribed sites.
type RealtimeHandler struct {
	hub *realtime.Hub
	jwt *iauth.JWTService
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub, jwt *iauth.JWTService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, jwt: jwt}
}

// Stream validates the caller and hands the connection to the hub. Banner
// clients pass their initial site list as a query parameter and can adjust it
// later with subscribe/unsubscribe control frames.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.jwt == nil || h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token = strings.TrimSpace(c.Query("access_token"))
	}
	if token == "" {
		authz := c.GetHeader("Authorization")
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
	}

	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if _, err := h.jwt.ValidateToken(token); err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	h.hub.Serve(siteQuery(c), c.Writer, c.Request)
}
