package main

import (
	"database/sql"
	stdlog "log"
	"os"

	"github.com/cleberrangel/estimate-histogram-api/internal/config"
	"github.com/cleberrangel/estimate-histogram-api/internal/database"
	"github.com/cleberrangel/estimate-histogram-api/internal/handler"
	"github.com/cleberrangel/estimate-histogram-api/internal/logger"
	"github.com/cleberrangel/estimate-histogram-api/internal/metrics"
	"github.com/cleberrangel/estimate-histogram-api/internal/middleware"
	"github.com/cleberrangel/estimate-histogram-api/internal/migration"
	"github.com/cleberrangel/estimate-histogram-api/internal/repository"
	"github.com/cleberrangel/estimate-histogram-api/internal/service"
	"github.com/cleberrangel/estimate-histogram-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.3"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Str("sampler_mode", cfg.SamplerMode).
		Bool("database", cfg.UseDatabase()).
		Msg("Estimate Histogram API iniciando")

	// Inicializa métricas
	metrics.Init()

	// Persistência opcional em PostgreSQL
	var db *sql.DB
	if cfg.UseDatabase() {
		db, err = database.Connect(database.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Erro ao conectar ao banco")
		}
		defer database.Close(db)

		if err := migration.NewMigrator(db).Run(); err != nil {
			log.Fatal().Err(err).Msg("Erro ao executar migrações")
		}
	}

	// Repositórios
	var estimateRepo *repository.EstimateRepository
	if db != nil {
		estimateRepo, err = repository.NewEstimateRepositoryWithDB(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Erro ao carregar estimativas do banco")
		}
	} else {
		estimateRepo = repository.NewEstimateRepository()
	}
	sampleHolder := repository.NewSampleHolder()

	// WebSocket hub para os clientes de gráfico
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Serviços
	samplerService := service.NewSamplerService(cfg.SamplerMode)
	histogramService := service.NewHistogramService()
	defer histogramService.Stop()

	estimateService := service.NewEstimateService(estimateRepo, wsHub)
	samplingService := service.NewSamplingService(samplerService, sampleHolder, histogramService, wsHub, service.SamplingDefaults{
		Count:   cfg.SampleCount,
		Min:     cfg.SampleMin,
		Max:     cfg.SampleMax,
		Buckets: cfg.HistogramBuckets,
	})

	// A aplicação começa com uma estimativa vazia, como o formulário
	// que este serviço atende
	if cfg.SeedEstimate && estimateRepo.Len() == 0 {
		estimateRepo.Add()
	}

	// Handlers
	estimateHandler := handler.NewEstimateHandler(estimateService, samplingService, service.NewExcelExporter())
	sampleHandler := handler.NewSampleHandler(samplingService)
	healthHandler := handler.NewHealthHandler(db, wsHub, Version)

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	// Inicializa router
	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())

	// Health checks (públicos)
	r.GET("/health", healthHandler.LivenessCheck)
	r.GET("/health/live", healthHandler.LivenessCheck)
	r.GET("/health/ready", healthHandler.ReadinessCheck)

	// Endpoints de operação (basic auth quando configurado)
	ops := r.Group("/")
	ops.Use(middleware.OpsBasicAuth(middleware.OpsAuthConfig{
		User:         cfg.OpsUser,
		PasswordHash: cfg.OpsPasswordHash,
	}))
	{
		ops.GET("/metrics", healthHandler.GetMetrics)
		ops.GET("/debug/memory", healthHandler.MemoryStats)
		ops.POST("/debug/gc", healthHandler.ForceGC)
	}

	// WebSocket para os clientes de gráfico
	r.GET("/ws", wsHub.ServeWS)

	// Grupo de rotas protegidas
	api := r.Group("/api/v1")
	api.Use(middleware.BearerAuth(middleware.AuthConfig{
		TokenAPI: cfg.TokenAPI,
	}))
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	}))
	{
		api.GET("/estimates", estimateHandler.List)
		api.POST("/estimates", estimateHandler.Create)
		api.DELETE("/estimates/:id", estimateHandler.Delete)
		api.PATCH("/estimates/:id", estimateHandler.Update)
		api.GET("/estimates/export", estimateHandler.Export)

		api.POST("/samples", sampleHandler.Resample)
		api.GET("/samples", sampleHandler.Current)
		api.GET("/histogram", sampleHandler.Histogram)
	}

	// Inicia servidor
	port := cfg.Port
	log.Info().Str("port", port).Msg("Servidor iniciando")

	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		os.Exit(1)
	}
}
