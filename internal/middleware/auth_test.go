package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newBearerRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BearerAuth(AuthConfig{TokenAPI: token}))
	router.GET("/resource", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestBearerAuth(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"token válido", "Bearer token-secreto", http.StatusOK},
		{"header ausente", "", http.StatusUnauthorized},
		{"formato inválido", "token-secreto", http.StatusUnauthorized},
		{"esquema errado", "Basic token-secreto", http.StatusUnauthorized},
		{"token errado", "Bearer outro-token", http.StatusUnauthorized},
		{"bearer minúsculo", "bearer token-secreto", http.StatusOK},
	}

	router := newBearerRouter("token-secreto")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/resource", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(RateLimitConfig{RPS: 1, Burst: 3}))
	router.GET("/resource", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// As três primeiras passam pelo burst; a quarta estoura
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/resource", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d should pass, got %d", i+1, w.Code)
		}
	}

	req, _ := http.NewRequest("GET", "/resource", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 after burst, got %d", w.Code)
	}

	// Outro IP tem seu próprio bucket
	req2, _ := http.NewRequest("GET", "/resource", nil)
	req2.RemoteAddr = "10.0.0.2:1234"
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("Different IP should have its own bucket, got %d", w2.Code)
	}
}
