package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// OpsAuthConfig contains configuration for operations endpoints auth
type OpsAuthConfig struct {
	User         string
	PasswordHash string // bcrypt hash
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// OpsBasicAuth protects operations endpoints (/metrics, /debug) with
// HTTP Basic credentials. When no user is configured the endpoints stay
// open, matching local development setups.
func OpsBasicAuth(cfg OpsAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.User == "" {
			c.Next()
			return
		}

		user, password, ok := c.Request.BasicAuth()
		if !ok || user != cfg.User || !CheckPassword(password, cfg.PasswordHash) {
			c.Header("WWW-Authenticate", `Basic realm="ops"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "credenciais inválidas",
				"code":    "INVALID_CREDENTIALS",
			})
			return
		}

		c.Next()
	}
}
