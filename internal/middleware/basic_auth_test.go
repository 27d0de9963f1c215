package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newOpsRouter(cfg OpsAuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(OpsBasicAuth(cfg))
	router.GET("/metrics", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestOpsAuthOpenWhenUnconfigured(t *testing.T) {
	router := newOpsRouter(OpsAuthConfig{})

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 without configured user, got %d", w.Code)
	}
}

func TestOpsAuthRejectsMissingCredentials(t *testing.T) {
	hash, err := HashPassword("segredo")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	router := newOpsRouter(OpsAuthConfig{User: "ops", PasswordHash: hash})

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("Expected WWW-Authenticate challenge header")
	}
}

func TestOpsAuthAcceptsValidCredentials(t *testing.T) {
	hash, err := HashPassword("segredo")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	router := newOpsRouter(OpsAuthConfig{User: "ops", PasswordHash: hash})

	req, _ := http.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("ops", "segredo")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with valid credentials, got %d", w.Code)
	}
}

func TestOpsAuthRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("segredo")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	router := newOpsRouter(OpsAuthConfig{User: "ops", PasswordHash: hash})

	req, _ := http.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("ops", "errado")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong password, got %d", w.Code)
	}
}

// **Feature: estimate-histogram-api, Property 9: Credential round trip**
// **Validates: Requirements 7.3**
// Any password verifies against its own hash and fails against a hash of
// a different password
func TestPasswordHashRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20 // bcrypt is deliberately slow

	properties := gopter.NewProperties(parameters)

	properties.Property("password verifies against its own hash only", prop.ForAll(
		func(password, other string) bool {
			if password == other {
				return true
			}

			hash, err := HashPassword(password)
			if err != nil {
				return false
			}
			if !CheckPassword(password, hash) {
				return false
			}
			return !CheckPassword(other, hash)
		},
		gen.RegexMatch(`^[a-zA-Z0-9]{6,30}$`),
		gen.RegexMatch(`^[a-zA-Z0-9]{6,30}$`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
