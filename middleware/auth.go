package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/common/config"
	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

const bearerPrefix = "Bearer "

// GatewayAuth checks the inbound Authorization header against the
// configured GATEWAY_KEY. An empty GatewayKey disables the check entirely,
// for local/dev use (spec.md §6: "absence or malformed prefix ⇒ 401").
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.GatewayKey == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			abortMissingCredential(c)
			return
		}

		token := strings.TrimPrefix(header, bearerPrefix)
		if token != config.GatewayKey {
			abortMissingCredential(c)
			return
		}

		c.Next()
	}
}

func abortMissingCredential(c *gin.Context) {
	de := rmodel.NewDispatchError(rmodel.KindMissingCredential, "missing or invalid bearer credential", nil)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"message": de.Message,
			"type":    string(de.Kind),
		},
	})
}
