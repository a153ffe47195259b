package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibecheck/internal/services"
)

// tokenCacheControl lets a CDN reuse a token for most of its one hour lifetime
const tokenCacheControl = "s-maxage=3500, stale-while-revalidate"

// TokenExchanger performs the Spotify client-credentials exchange
type TokenExchanger interface {
	Configured() bool
	Exchange(ctx context.Context) (*services.RelayedToken, error)
}

// TokenHandler relays Spotify access tokens to browser clients
type TokenHandler struct {
	relay TokenExchanger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(relay TokenExchanger) *TokenHandler {
	return &TokenHandler{relay: relay}
}

// Token handles GET /api/token
func (h *TokenHandler) Token(c *gin.Context) {
	if !h.relay.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server missing Spotify credentials"})
		return
	}

	token, err := h.relay.Exchange(c.Request.Context())
	if err != nil {
		slog.Error("Token generation error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	contentType := token.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	if token.StatusCode < 200 || token.StatusCode >= 300 {
		slog.Warn("Spotify token exchange rejected", "status", token.StatusCode)
		c.Data(token.StatusCode, contentType, token.Body)
		return
	}

	c.Header("Cache-Control", tokenCacheControl)
	c.Data(http.StatusOK, contentType, token.Body)
}
