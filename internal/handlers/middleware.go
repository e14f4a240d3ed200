package handlers

import (
	"strings"

	"microblog/internal/apperr"
	"microblog/internal/loader"
	"microblog/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	loaderKey   = "userLoader"
)

// authGate runs once per inbound request before any business logic. It
// decodes a bearer token if one is present and attaches the identity to
// the request context. It never rejects the request itself; that is a
// downstream, per-operation decision.
func (h *Handler) authGate(c *gin.Context) {
	if token := extractToken(c); token != "" {
		if payload, ok := h.services.Tokens.Verify(token); ok {
			c.Set(identityKey, payload)
		}
	}
	c.Next()
}

// extractToken pulls the bearer token from the Authorization header or,
// failing that, the token query parameter. net/http canonicalizes header
// keys, so any casing of "authorization" lands on the same lookup.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Query("token")
}

// requireAuth aborts with the Unauthorized error when the request context
// carries no authenticated identity. It composes onto any route group.
func (h *Handler) requireAuth(c *gin.Context) {
	if _, ok := currentIdentity(c); !ok {
		c.AbortWithStatusJSON(apperr.Unauthorized.Code, apperr.Unauthorized)
		return
	}
	c.Next()
}

// currentIdentity returns the identity the auth gate attached, if any.
func currentIdentity(c *gin.Context) (models.TokenPayload, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.TokenPayload{}, false
	}
	payload, ok := v.(models.TokenPayload)
	return payload, ok
}

// withUserLoader creates the per-request author batch-loader and threads
// it through the request context. A fresh instance per request keeps
// cached lookups from ever crossing request boundaries.
func (h *Handler) withUserLoader(c *gin.Context) {
	if h.authors != nil {
		c.Set(loaderKey, loader.NewUserLoader(h.authors, 0))
	}
	c.Next()
}

func userLoaderFrom(c *gin.Context) *loader.UserLoader {
	v, ok := c.Get(loaderKey)
	if !ok {
		return nil
	}
	l, _ := v.(*loader.UserLoader)
	return l
}
