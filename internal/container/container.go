package container

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/Rayyy-dev/User-Management/app/db"
	"github.com/Rayyy-dev/User-Management/config"
	"github.com/Rayyy-dev/User-Management/internal/api/auth"
	"github.com/Rayyy-dev/User-Management/internal/api/health"
	"github.com/Rayyy-dev/User-Management/internal/api/password"
	"github.com/Rayyy-dev/User-Management/internal/api/user"
)

// Container holds all application dependencies.
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	Pool          *pgxpool.Pool
	UserHandler   *user.HandlerImpl
	AuthHandler   *auth.HandlerImpl
	HealthHandler *health.HandlerImpl
	AuthService   auth.AuthService
}

// NewContainer initializes the dependency graph: database pool, password
// hasher, repositories, services, and handlers.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		return nil, err
	}

	hasher := password.New()

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, hasher, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	sessionStore := auth.NewPostgresSessionStore(pool, logger)
	authService := auth.NewAuthService(userRepo, hasher, sessionStore, cfg.JWT, cfg.Session.TTL, logger)
	authHandler := auth.NewHandlerImpl(authService, userService, cfg.Session, logger)

	healthHandler := health.NewHandlerImpl(pool, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Pool:          pool,
		UserHandler:   userHandler,
		AuthHandler:   authHandler,
		HealthHandler: healthHandler,
		AuthService:   authService,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
