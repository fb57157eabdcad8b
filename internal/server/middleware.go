package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"auction-service/internal/identity"
	"auction-service/services/auction/helpers"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
)

// CredentialVerifier validates a bearer credential and resolves the caller identity
type CredentialVerifier interface {
	VerifyCredential(token string) (identity.Identity, error)
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// AuthRequiredMiddleware rejects requests without a valid bearer credential
// and stores the resolved identity in the request context
func AuthRequiredMiddleware(verifier CredentialVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			utils.JSONError(c, http.StatusUnauthorized, fmt.Errorf("missing or malformed authorization header"), "invalid credentials")
			c.Abort()
			return
		}

		id, err := verifier.VerifyCredential(token)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err, "invalid credentials")
			c.Abort()
			return
		}

		c.Set(helpers.IdentityContextKey, id)
		c.Next()
	}
}
