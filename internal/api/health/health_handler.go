package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Rayyy-dev/User-Management/internal/api"
)

type pgPool interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Users    int64  `json:"users,omitempty"`
	Version  string `json:"postgres_version,omitempty"`
}

type HandlerImpl struct {
	logger *slog.Logger
	pool   pgPool
}

func NewHandlerImpl(pool pgPool, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger: logger,
		pool:   pool,
	}
}

// Health reports service liveness plus database reachability. A failing
// database ping turns the whole check into a 503 so load balancers stop
// routing here.
func (h *HandlerImpl) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Health check failed, database unreachable", slog.Any("error", err))
		api.WriteJSONResponse(w, r, http.StatusServiceUnavailable, Status{
			Status:   "unhealthy",
			Database: "unreachable",
		})
		return
	}

	status := Status{Status: "healthy", Database: "connected"}

	// Extras are best effort; ping already proved the connection.
	if err := h.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&status.Users); err != nil {
		h.logger.WarnContext(ctx, "Health check could not count users", slog.Any("error", err))
	}
	if err := h.pool.QueryRow(ctx, `SELECT version()`).Scan(&status.Version); err != nil {
		h.logger.WarnContext(ctx, "Health check could not read server version", slog.Any("error", err))
	}

	api.WriteJSONResponse(w, r, http.StatusOK, status)
}
