package main

import (
	"context"
	"encoding/csv"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/anseljh/ttab-parser/config"
	"github.com/anseljh/ttab-parser/models"
	"github.com/anseljh/ttab-parser/providers/courtlistener"
	"github.com/anseljh/ttab-parser/providers/uspto"
	"github.com/anseljh/ttab-parser/services"
	"github.com/anseljh/ttab-parser/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	opinionsUpsertedCounter prometheus.Counter
	appealsMatchedCounter   prometheus.Counter
)

func init() {
	opinionsUpsertedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ttab_opinions_upserted_total",
			Help: "Total number of TTAB opinions upserted into the database.",
		},
	)
	appealsMatchedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ttab_appeals_matched_total",
			Help: "Total number of Federal Circuit appeals matched to opinions.",
		},
	)
	prometheus.MustRegister(opinionsUpsertedCounter, appealsMatchedCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to opinions database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.FederalCircuitAppeal{}, &models.Opinion{})

	// Setup Providers
	usptoFetcher := uspto.NewFetcher(cfg.USPTOBaseURL, cfg.USPTOAPIKey, cfg.DataDir, logging)
	clClient := courtlistener.New(cfg.CourtListenerBaseURL, cfg.CourtListenerAPIToken, cfg.CourtListenerInterval, logging)
	matcher := services.NewAppealMatcher(clClient, logging)
	if !clClient.Enabled() {
		logging.Warn("CourtListener token missing, appeal matching disabled")
	}

	// Setup Services
	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	ingestService := &services.IngestService{
		Config:        cfg,
		DB:            db,
		S3Client:      s3Client,
		Fetcher:       usptoFetcher,
		Matcher:       matcher,
		Logger:        logging,
		OnUpsert:      func() { opinionsUpsertedCounter.Inc() },
		OnAppealMatch: func() { appealsMatchedCounter.Inc() },
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupOpinionRoutes(router, db, logging)
	setupAppealRoutes(router, db, logging)
	setupIngestRoutes(router, ingestService)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled ingest job...")
		if err := ingestService.RunDaily(context.Background()); err != nil {
			logging.Error("Cron job failed", zap.Error(err))
		} else {
			logging.Info("Cron job completed")
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupOpinionRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/opinions")

	// Einfacher GET-Endpunkt für alle Opinions (mit Limit)
	rg.GET("/", func(c *gin.Context) {
		limit := 100
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		var opinions []models.Opinion
		if err := db.Preload("FederalCircuitAppeal").Order("decision_date desc").Limit(limit).Find(&opinions).Error; err != nil {
			log.Error("Database query for opinions failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, opinions)
	})

	// Body-gesteuerter Endpunkt für komplexe Abfragen
	rg.POST("/query", func(c *gin.Context) {
		type OpinionQuery struct {
			CaseNumber      string `json:"case_number"`
			ProceedingType  string `json:"proceeding_type"`
			Outcome         string `json:"outcome"`
			DecidedAfter    string `json:"decided_after"`
			DecidedBefore   string `json:"decided_before"`
			AppealIndicated *bool  `json:"appeal_indicated"`
			HasAppeal       *bool  `json:"has_appeal"`
			Limit           int    `json:"limit"`
		}

		var req OpinionQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Opinion{})

		if req.CaseNumber != "" {
			query = query.Where("case_number = ?", req.CaseNumber)
		}
		if req.ProceedingType != "" {
			query = query.Where("proceeding_type = ?", req.ProceedingType)
		}
		if req.Outcome != "" {
			query = query.Where("outcome = ?", req.Outcome)
		}
		if req.DecidedAfter != "" {
			query = query.Where("decision_date >= ?", req.DecidedAfter)
		}
		if req.DecidedBefore != "" {
			query = query.Where("decision_date <= ?", req.DecidedBefore)
		}
		if req.AppealIndicated != nil {
			query = query.Where("appeal_indicated = ?", *req.AppealIndicated)
		}
		if req.HasAppeal != nil {
			if *req.HasAppeal {
				query = query.Where("federal_circuit_appeal_id IS NOT NULL")
			} else {
				query = query.Where("federal_circuit_appeal_id IS NULL")
			}
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var opinions []models.Opinion
		if err := query.Preload("FederalCircuitAppeal").Order("decision_date desc").Find(&opinions).Error; err != nil {
			log.Error("Database query for opinions failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, opinions)
	})

	// CSV-Export aller Opinions
	rg.GET("/export.csv", func(c *gin.Context) {
		var opinions []models.Opinion
		if err := db.Preload("FederalCircuitAppeal").Order("decision_date desc").Find(&opinions).Error; err != nil {
			log.Error("Database query for CSV export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="ttab_opinions.csv"`)

		writer := csv.NewWriter(c.Writer)
		writer.Write(models.CSVHeaders())
		for _, op := range opinions {
			writer.Write(op.CSVRow())
		}
		writer.Flush()
	})

	rg.GET("/:case_number", func(c *gin.Context) {
		caseNumber := c.Param("case_number")
		var opinion models.Opinion
		if err := db.Preload("FederalCircuitAppeal").Where("case_number = ?", caseNumber).First(&opinion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "opinion not found"})
				return
			}
			log.Error("DB error fetching opinion", zap.String("case_number", caseNumber), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, opinion)
	})
}

func setupAppealRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/appeals")

	rg.GET("/", func(c *gin.Context) {
		var appeals []models.FederalCircuitAppeal
		if err := db.Order("filing_date desc").Find(&appeals).Error; err != nil {
			log.Error("Database query for appeals failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, appeals)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var appeal models.FederalCircuitAppeal
		if err := db.First(&appeal, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "appeal not found"})
				return
			}
			log.Error("DB error fetching appeal", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, appeal)
	})
}

func setupIngestRoutes(router *gin.Engine, ingestService *services.IngestService) {
	rg := router.Group("/ingest")

	rg.POST("/daily", func(c *gin.Context) {
		go func() {
			if err := ingestService.RunDaily(context.Background()); err != nil {
				ingestService.Logger.Error("Async daily ingest failed", zap.Error(err))
			} else {
				ingestService.Logger.Info("Async daily ingest completed")
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Daily ingest triggered."})
	})

	rg.POST("/directory", func(c *gin.Context) {
		var req struct {
			Dir string `json:"dir" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'dir' field is required."})
			return
		}

		go func() {
			if err := ingestService.RunDirectory(context.Background(), req.Dir); err != nil {
				ingestService.Logger.Error("Async directory ingest failed", zap.String("dir", req.Dir), zap.Error(err))
			} else {
				ingestService.Logger.Info("Async directory ingest completed", zap.String("dir", req.Dir))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Directory ingest triggered."})
	})

	rg.POST("/enrich", func(c *gin.Context) {
		go func() {
			matched, err := ingestService.EnrichAppeals(context.Background())
			if err != nil {
				ingestService.Logger.Error("Async appeal enrichment failed", zap.Error(err))
			} else {
				ingestService.Logger.Info("Async appeal enrichment completed", zap.Int("matched", matched))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Appeal enrichment triggered."})
	})
}
