package app

import (
	"context"
	"net/http"
	"time"

	"equiprent/internal/config"
	"equiprent/internal/metrics"
	"equiprent/internal/middleware"
	"equiprent/internal/modules/auth"
	"equiprent/internal/modules/catalog"
	"equiprent/internal/modules/feed"
	"equiprent/internal/modules/inventory"
	"equiprent/internal/modules/rental"
	"equiprent/internal/modules/report"
	jwtsvc "equiprent/internal/pkg/jwt"
	"equiprent/internal/pkg/response"
	"equiprent/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired HTTP router and the background pieces the server owns.
type App struct {
	Router  *gin.Engine
	Hub     *feed.Hub
	Sweeper *rental.Sweeper
	Auth    *auth.Service
	Reports *report.Service
	Rentals *rental.Service
}

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	// Limiter guards public rental writes when set.
	Limiter middleware.Counter
}

func New(d Deps) *App {
	cfg, log := d.Config, d.Log
	if log == nil {
		log = zap.NewNop()
	}

	categoryRepo := repository.NewCategoryRepository(d.DB)
	equipmentRepo := repository.NewEquipmentRepository(d.DB)
	rentalRepo := repository.NewRentalRepository(d.DB)
	adminRepo := repository.NewAdminRepository(d.DB)

	j := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	hub := feed.NewHub(log.Named("feed"))

	authService := auth.NewService(adminRepo, j, log.Named("auth"))
	catalogService := catalog.NewService(equipmentRepo, categoryRepo)
	inventoryService := inventory.NewService(equipmentRepo, categoryRepo)
	rentalService := rental.NewService(rentalRepo, hub, log.Named("rental"))
	reportService := report.NewService(rentalRepo, equipmentRepo, categoryRepo)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.RequestLogger(log.Named("http")),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)
	if cfg.Metrics.Enabled {
		metrics.Register()
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/healthz", health(d.DB))

	v1 := r.Group("/api/v1")
	{
		catalog.NewHandler(catalogService).RegisterRoutes(v1)

		var guards []gin.HandlerFunc
		if d.Limiter != nil {
			guards = append(guards, middleware.RateLimit(d.Limiter, cfg.Redis.RateLimit, cfg.Redis.RateWindow, log))
		}

		authHandler := auth.NewHandler(authService)
		adminBase := v1.Group("/admin")
		authHandler.RegisterPublicRoutes(adminBase)
		feed.NewHandler(hub, j, cfg.HTTP.AllowedOrigins, log.Named("feed")).RegisterRoutes(adminBase)

		admin := adminBase.Group("")
		admin.Use(middleware.JWTAuth(j), middleware.AdminOnly())
		{
			authHandler.RegisterProtectedRoutes(admin)
			inventory.NewHandler(inventoryService).RegisterRoutes(admin)
			report.NewHandler(reportService).RegisterRoutes(admin)
		}

		rental.NewHandler(rentalService).RegisterRoutes(v1, admin, guards...)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	return &App{
		Router:  r,
		Hub:     hub,
		Sweeper: rental.NewSweeper(rentalService, cfg.Sweeper.Interval, log.Named("sweeper")),
		Auth:    authService,
		Reports: reportService,
		Rentals: rentalService,
	}
}

// Bootstrap creates the configured admin account if it does not exist yet.
func (a *App) Bootstrap(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Admin.Email == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	created, err := a.Auth.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
	if err != nil {
		return err
	}
	if created {
		log.Info("admin account created", zap.String("email", cfg.Admin.Email))
	}
	return nil
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is not reachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
