package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig contém a configuração do limitador por cliente
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// clientLimiters guarda um limiter por IP de origem
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func (cl *clientLimiters) get(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	limiter, ok := cl.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(cl.rps, cl.burst)
		cl.limiters[ip] = limiter
	}
	return limiter
}

// RateLimit limita requisições por IP de origem usando token bucket
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RPS) * 2
	}

	limiters := &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(cfg.RPS),
		burst:    cfg.Burst,
	}

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "limite de requisições excedido",
			})
			return
		}
		c.Next()
	}
}
