package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Modos de amostragem suportados
const (
	SamplerModeLegacy    = "legacy"
	SamplerModeRejection = "rejection"
)

// Config armazena as configurações da aplicação
type Config struct {
	TokenAPI string
	Port     string
	GinMode  string
	LogLevel string
	LogJSON  bool

	// Amostragem
	SamplerMode  string
	SampleCount  int
	SampleMin    float64
	SampleMax    float64
	SeedEstimate bool // cria a estimativa inicial vazia no boot

	// Histograma
	HistogramBuckets int

	// Rate limit do grupo /api/v1 (requisições por segundo)
	RateLimitRPS   float64
	RateLimitBurst int

	// Basic auth dos endpoints de operação (/metrics, /debug)
	OpsUser         string
	OpsPasswordHash string

	// Banco de dados (opcional; vazio = armazenamento em memória)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

// ErrMissingToken indica que o token da API não foi configurado
var ErrMissingToken = errors.New("TOKEN_API não configurado")

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()          // ./backend/.env
	_ = godotenv.Load("../.env") // ./.env (raiz do projeto)

	cfg := &Config{
		TokenAPI: os.Getenv("TOKEN_API"),
		Port:     os.Getenv("PORT"),
		GinMode:  os.Getenv("GIN_MODE"),
		LogLevel: os.Getenv("LOG_LEVEL"),
		LogJSON:  envBool("LOG_JSON", true),

		SamplerMode:  os.Getenv("SAMPLER_MODE"),
		SampleCount:  envInt("SAMPLE_COUNT", 100000),
		SampleMin:    envFloat("SAMPLE_MIN", 0),
		SampleMax:    envFloat("SAMPLE_MAX", 10),
		SeedEstimate: envBool("SEED_ESTIMATE", true),

		HistogramBuckets: envInt("HISTOGRAM_BUCKETS", 40),

		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		OpsUser:         os.Getenv("OPS_USER"),
		OpsPasswordHash: os.Getenv("OPS_PASSWORD_HASH"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),
	}

	// Validações obrigatórias
	if cfg.TokenAPI == "" {
		return nil, ErrMissingToken
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.GinMode == "" {
		cfg.GinMode = "debug"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.SamplerMode != SamplerModeLegacy && cfg.SamplerMode != SamplerModeRejection {
		cfg.SamplerMode = SamplerModeRejection
	}

	if cfg.SampleCount <= 0 {
		cfg.SampleCount = 100000
	}

	if cfg.HistogramBuckets <= 0 {
		cfg.HistogramBuckets = 40
	}

	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}

	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}

	return cfg, nil
}

// UseDatabase indica se a persistência em PostgreSQL está habilitada
func (c *Config) UseDatabase() bool {
	return c.DBHost != ""
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
