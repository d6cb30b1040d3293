package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"scholar-sync/config"
	"scholar-sync/models"
	"scholar-sync/providers"
	"scholar-sync/providers/crossref"
	"scholar-sync/providers/dblp"
	"scholar-sync/providers/orcid"
	"scholar-sync/services"
	"scholar-sync/storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
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
	papersSavedCounter      prometheus.Counter
	papersSkippedCounter    prometheus.Counter
	profilesSyncedCounter   prometheus.Counter
	syncItemsSkippedCounter prometheus.Counter
)

func init() {
	papersSavedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papers_saved_total",
			Help: "Total number of new papers added to the database.",
		},
	)
	papersSkippedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papers_skipped_duplicates_total",
			Help: "Total number of papers skipped as natural-key duplicates.",
		},
	)
	profilesSyncedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "profiles_synced_total",
			Help: "Total number of successfully synchronized ORCID profiles.",
		},
	)
	syncItemsSkippedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_items_skipped_total",
			Help: "Total number of malformed profile items skipped during sync.",
		},
	)
	prometheus.MustRegister(papersSavedCounter, papersSkippedCounter, profilesSyncedCounter, syncItemsSkippedCounter)
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

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.", zap.String("schema", cfg.DBSchema))

	// Das Schema wird in Produktion extern provisioniert; Auto-Migration nur
	// für lokale Entwicklung.
	if gin.Mode() == gin.DebugMode {
		logging.Info("Debug mode detected. Running database auto-migration...")
		if err := db.AutoMigrate(
			&models.Paper{},
			&models.Country{}, &models.Org{}, &models.WorkType{}, &models.ExternalIDRelationship{},
			&models.Profile{}, &models.RecordName{}, &models.Biography{}, &models.Email{},
			&models.OtherName{}, &models.ResearcherURL{}, &models.ProfileKeyword{},
			&models.Address{}, &models.ProfileExternalIdentifier{},
			&models.OrgAffiliationRelation{}, &models.OrgAffiliationRelationExternalIdentifier{},
			&models.ProfileFunding{}, &models.ProfileFundingContributor{}, &models.ProfileFundingExternalIdentifier{},
			&models.PeerReview{}, &models.PeerReviewExternalIdentifier{},
			&models.ResearchResource{}, &models.ResearchResourceItem{}, &models.ResearchResourceExternalIdentifier{},
			&models.Work{}, &models.WorkExternalIdentifier{}, &models.WorkContributor{},
		); err != nil {
			logging.Fatal("Auto-migration failed", zap.Error(err))
		}
	}

	// Setup Providers
	orcidFetcher := orcid.NewFetcher(cfg, logging)
	enabledProviderNames := strings.Split(cfg.EnabledProviders, ",")
	var enabledProviders []providers.Provider
	for _, name := range enabledProviderNames {
		switch strings.TrimSpace(name) {
		case "crossref":
			enabledProviders = append(enabledProviders, crossref.NewFetcher(cfg, logging))
		case "dblp":
			enabledProviders = append(enabledProviders, dblp.NewFetcher(cfg, logging))
		case "orcid":
			enabledProviders = append(enabledProviders, orcidFetcher)
		default:
			logging.Warn("Unknown provider in config", zap.String("provider_name", name))
		}
	}
	if len(enabledProviders) == 0 {
		logging.Fatal("No valid providers enabled. Check ENABLED_PROVIDERS in .env")
	}
	logging.Info("Active providers loaded", zap.Strings("providers", enabledProviderNames))

	// Setup Services
	var s3Client *s3.Client
	if cfg.ArchiveEnabled() {
		s3Client, err = storage.NewS3Client(context.Background(), cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		logging.Info("Raw-data archive enabled", zap.String("bucket", cfg.StratoS3Bucket))
	}
	ingestService := services.NewIngestService(cfg, db, logging, enabledProviders)
	syncService := services.NewProfileSyncService(cfg, db, s3Client, logging, orcidFetcher, services.NewRandomIDGenerator())

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupPaperRoutes(router, db, logging)
	setupIngestRoutes(router, ingestService, syncService)
	setupProfileRoutes(router, db, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled profile resync...")
		count, err := syncService.ResyncAll(context.Background())
		if err != nil {
			logging.Error("Cron job failed", zap.Error(err))
		} else {
			logging.Info("Cron job completed", zap.Int("profiles_synced", count))
			profilesSyncedCounter.Add(float64(count))
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

func setupPaperRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/papers")

	// Einfacher GET-Endpunkt, um alle Paper abzurufen (ohne Filter)
	rg.GET("/", func(c *gin.Context) {
		var papers []models.Paper
		if err := db.Find(&papers).Error; err != nil {
			log.Error("Database query for all papers failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, papers)
	})

	// Body-gesteuerter Endpunkt für gefilterte Abfragen
	rg.POST("/query", func(c *gin.Context) {
		type PaperQuery struct {
			SourceName string `json:"source_name"`
			Year       *int   `json:"year"`
			DOI        string `json:"doi"`
			Limit      int    `json:"limit"`
		}

		var req PaperQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Paper{})

		if req.SourceName != "" {
			query = query.Where("source_name = ?", req.SourceName)
		}
		if req.Year != nil {
			query = query.Where("year = ?", *req.Year)
		}
		if req.DOI != "" {
			query = query.Where("doi = ?", req.DOI)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var papers []models.Paper
		if err := query.Order("created_at desc").Find(&papers).Error; err != nil {
			log.Error("Database query for papers failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, papers)
	})
}

func setupIngestRoutes(router *gin.Engine, ingestService *services.IngestService, syncService *services.ProfileSyncService) {
	rg := router.Group("/ingest")

	// POST /ingest/papers führt die Paper-Suche synchron aus und liefert die
	// Zählerstände zurück.
	rg.POST("/papers", func(c *gin.Context) {
		var req struct {
			Query   string   `json:"query" binding:"required"`
			Sources []string `json:"sources"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'query' field is required."})
			return
		}

		saved, skipped, err := ingestService.Run(c.Request.Context(), req.Query, req.Sources)
		if err != nil {
			ingestService.Logger.Error("Paper ingest failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ingest failed"})
			return
		}
		papersSavedCounter.Add(float64(saved))
		papersSkippedCounter.Add(float64(skipped))
		c.JSON(http.StatusOK, gin.H{"saved": saved, "skipped_duplicates": skipped})
	})

	// POST /ingest/profile synchronisiert ein ORCID-Profil, per iD oder per
	// Freitext-Suche.
	rg.POST("/profile", func(c *gin.Context) {
		var req struct {
			Orcid string `json:"orcid"`
			Query string `json:"query"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || (req.Orcid == "" && req.Query == "") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'orcid' or 'query' field is required."})
			return
		}

		orcidID := req.Orcid
		var skipped int
		var err error
		if orcidID != "" {
			skipped, err = syncService.SyncProfile(c.Request.Context(), orcidID)
		} else {
			orcidID, skipped, err = syncService.SyncByQuery(c.Request.Context(), req.Query)
		}
		if err != nil {
			if errors.Is(err, services.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no matching ORCID profile found"})
				return
			}
			syncService.Logger.Error("Profile sync failed", zap.String("orcid", orcidID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile sync failed"})
			return
		}
		profilesSyncedCounter.Inc()
		syncItemsSkippedCounter.Add(float64(skipped))
		c.JSON(http.StatusOK, gin.H{"orcid": orcidID, "skipped_items": skipped})
	})
}

func setupProfileRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/profiles")

	rg.GET("/", func(c *gin.Context) {
		var profiles []models.Profile
		if err := db.Find(&profiles).Error; err != nil {
			log.Error("Database query for profiles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, profiles)
	})

	rg.GET("/:orcid", func(c *gin.Context) {
		orcidID := c.Param("orcid")

		var profile models.Profile
		if err := db.Where("orcid = ?", orcidID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
				return
			}
			log.Error("Database query for profile failed", zap.String("orcid", orcidID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var name models.RecordName
		hasName := db.Where("orcid = ?", orcidID).First(&name).Error == nil

		var works []models.Work
		if err := db.Where("orcid = ?", orcidID).Find(&works).Error; err != nil {
			log.Error("Database query for works failed", zap.String("orcid", orcidID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var affiliations []models.OrgAffiliationRelation
		if err := db.Where("orcid = ?", orcidID).Find(&affiliations).Error; err != nil {
			log.Error("Database query for affiliations failed", zap.String("orcid", orcidID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var fundings []models.ProfileFunding
		if err := db.Where("orcid = ?", orcidID).Find(&fundings).Error; err != nil {
			log.Error("Database query for fundings failed", zap.String("orcid", orcidID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		resp := gin.H{
			"profile":      profile,
			"works":        works,
			"affiliations": affiliations,
			"fundings":     fundings,
		}
		if hasName {
			resp["name"] = name
		}
		c.JSON(http.StatusOK, resp)
	})
}
