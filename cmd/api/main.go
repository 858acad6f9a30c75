package main

import (
	"context"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-portal/internal/auth"
	"github.com/justsurfingit/job-portal/internal/config"
	"github.com/justsurfingit/job-portal/internal/database"
	"github.com/justsurfingit/job-portal/internal/events"
	"github.com/justsurfingit/job-portal/internal/handlers"
	"github.com/justsurfingit/job-portal/internal/services"
	"github.com/justsurfingit/job-portal/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	setupLogging(cfg)
	logrus.WithFields(cfg.Summary()).Info("Configuration loaded")

	// 2. Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 3. Object store: S3 when a bucket is configured, local disk otherwise
	var blobs storage.BlobStore
	var uploadDir string
	if cfg.S3.Bucket != "" {
		blobs, err = storage.NewS3Store(context.Background(), storage.S3Config(cfg.S3))
		if err != nil {
			logrus.WithError(err).Fatal("Failed to configure S3 storage")
		}
		logrus.WithField("bucket", cfg.S3.Bucket).Info("Using S3 object storage")
	} else {
		blobs, err = storage.NewDiskStore(cfg.UploadDir, "/uploads")
		if err != nil {
			logrus.WithError(err).Fatal("Failed to prepare upload directory")
		}
		uploadDir = cfg.UploadDir
		logrus.WithField("dir", cfg.UploadDir).Info("Using local disk storage")
	}

	// 4. Application events
	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer amqpPub.Close()
		publisher = amqpPub
	}

	// 5. Core services
	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid bcrypt cost")
	}
	sessions, err := auth.NewSessionManager(auth.Secret(cfg.JWTSecret), cfg.SessionTTL)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid session settings")
	}
	cookie := auth.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure}

	gate := services.NewGate(db)
	userService := services.NewUserService(db, gate, hasher, sessions, blobs)
	companyService := services.NewCompanyService(db, gate, blobs)
	jobService := services.NewJobService(db, gate)
	applicationService := services.NewApplicationService(db, gate, publisher)

	// 6. Router & CORS
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(corsCfg))

	handlers.SetupRoutes(r, handlers.Deps{
		DB:             db,
		Guard:          handlers.NewSessionGuard(sessions, cookie, gate),
		Users:          handlers.NewUserHandler(userService, cookie),
		Companies:      handlers.NewCompanyHandler(companyService),
		Jobs:           handlers.NewJobHandler(jobService, applicationService),
		Applications:   handlers.NewApplicationHandler(applicationService),
		RequestTimeout: cfg.RequestTimeout,
		UploadDir:      uploadDir,
	})

	logrus.Infof("Server starting on %s", cfg.HTTPPort)
	if err := r.Run(cfg.HTTPPort); err != nil {
		logrus.WithError(err).Fatal("Server failed to start")
	}
}

func setupLogging(cfg *config.Config) {
	logrus.SetOutput(os.Stdout)
	if cfg.Production() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
