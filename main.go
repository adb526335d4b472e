package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/staffdesk/staffdesk/handlers"
	"github.com/staffdesk/staffdesk/internal/config"
	"github.com/staffdesk/staffdesk/internal/database"
	"github.com/staffdesk/staffdesk/internal/realtime"
	"github.com/staffdesk/staffdesk/internal/records"
	"github.com/staffdesk/staffdesk/internal/sessions"
	"github.com/staffdesk/staffdesk/internal/storage"
	"github.com/staffdesk/staffdesk/internal/store"
	"github.com/staffdesk/staffdesk/internal/tokens"
	"github.com/staffdesk/staffdesk/pkg/logger"
	"github.com/staffdesk/staffdesk/pkg/metrics"
	"github.com/staffdesk/staffdesk/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v jwt_secret_set=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.JWT.Secret != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early so the rate limiter, session store and token
	// blacklist can use it when configured
	var importedRedis *redis.Client
	if cfg.Redis.Host != "" {
		importedRedis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := importedRedis.Ping(ctx).Err(); err == nil {
			sessions.SetBlacklistClient(importedRedis)
			logger.Infof("Connected to Redis (early) for optional features: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis early (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			importedRedis = nil
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && importedRedis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(importedRedis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Durable document store: MongoDB when a URI is configured, the local
	// JSON file otherwise.
	var st store.Store
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			c, errConn := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				client = c
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if client == nil {
			logger.Fatalf("could not connect to MongoDB after %d attempts", maxAttempts)
		}
		defer func() { _ = client.Disconnect(ctx) }()
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		st = store.NewMongoStore(col)
		logger.Infof("Using MongoDB document store (db=%s collection=%s)", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	} else {
		st = store.NewFileStore(cfg.Store.DataFile)
		logger.Infof("Using file document store at %s", cfg.Store.DataFile)
	}

	hub := realtime.NewHub()

	svc, err := records.NewService(ctx, st, hub, records.NewBcryptHasher(0))
	if err != nil {
		logger.Fatalf("failed to load document store: %v", err)
	}
	svc.SetPersistTimeout(cfg.Store.PersistTimeout)

	// Optional MinIO snapshot archive
	if cfg.Snapshot.Endpoint != "" {
		arch, err := storage.NewSnapshotArchive(&storage.Config{
			Endpoint:  cfg.Snapshot.Endpoint,
			AccessKey: cfg.Snapshot.AccessKey,
			SecretKey: cfg.Snapshot.SecretKey,
			Bucket:    cfg.Snapshot.Bucket,
			UseSSL:    cfg.Snapshot.UseSSL,
		})
		if err != nil {
			logger.Warnf("snapshot archive disabled: %v", err)
		} else {
			svc.SetArchiver(arch)
			logger.Infof("Snapshot archive enabled (bucket=%s)", cfg.Snapshot.Bucket)
		}
	}

	// Sessions: prefer Redis when available, fall back to process memory
	var sessionsSvc *sessions.Service
	if importedRedis != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(importedRedis, "session:"))
		logger.Infof("Using Redis for session storage")
	} else {
		sessionsSvc = sessions.NewService(sessions.NewMemoryRepository())
		logger.Warnf("Using in-memory session storage; sessions will not survive a restart")
	}

	// Bearer-token middleware guards mutating routes only when a secret is set
	var authMW gin.HandlerFunc
	if cfg.JWT.Secret != "" {
		authMW = middleware.AuthMiddleware(tokens.NewVerifier(cfg.JWT.Secret))
	} else {
		logger.Warnf("JWT_SECRET not set; mutating routes are unauthenticated")
	}

	handlers.NewAuthHandler(cfg, svc, sessionsSvc).Register(r.Group("/"))
	handlers.NewRecordsHandler(svc).Register(r, authMW)
	handlers.RegisterSwagger(r)

	// WebSocket event feed
	r.GET("/ws", gin.WrapF(realtime.Serve(hub)))

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		// storage readiness: the durable store must be readable
		if _, err := st.Load(c.Request.Context()); err != nil {
			deps["storage"] = false
			ready = false
		} else {
			deps["storage"] = true
		}

		// Redis readiness when used for rate-limiter or sessions
		if cfg.Redis.Host != "" {
			deps["redis"] = importedRedis != nil && importedRedis.Ping(c.Request.Context()).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting staffdesk on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
