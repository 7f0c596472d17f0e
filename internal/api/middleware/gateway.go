package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GatewayAuth trusts identity info from gateway headers (X-User-ID,
// X-Wallet-Address). This is used when the API runs behind an edge
// gateway that already validated the session and wallet signature.
//
// When AUTH_MODE=gateway, the API trusts these headers unconditionally.
// This should ONLY be used in the hosted environment with proper
// network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		if wallet := c.GetHeader("X-Wallet-Address"); wallet != "" {
			c.Set("wallet_address", wallet)
		}

		c.Next()
	}
}

// NoAuth is a pass-through middleware for when AUTH_MODE=none.
// It allows all requests without authentication.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "anonymous")
		c.Next()
	}
}

// WalletFromContext returns the authenticated wallet address, if any.
func WalletFromContext(c *gin.Context) (string, bool) {
	wallet, exists := c.Get("wallet_address")
	if !exists {
		return "", false
	}
	s, ok := wallet.(string)
	return s, ok && s != ""
}
