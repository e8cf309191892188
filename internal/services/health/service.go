package health

import (
	"context"
	"database/sql"
	"time"

	"archive-backend/internal/shared/storage/object"
)

// Service encapsulates readiness checks over the backing stores.
type Service struct {
	db    *sql.DB
	store object.Store
}

// NewService constructs a health service. db may be nil when the API runs on
// in-memory repositories.
func NewService(db *sql.DB, store object.Store) *Service {
	return &Service{db: db, store: store}
}

// Status reports liveness of the process and its dependencies.
func (s *Service) Status(ctx context.Context) map[string]any {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]any{"ok": true, "database": "memory", "storage": "unknown"}
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			status["ok"] = false
			status["database"] = "unreachable"
		} else {
			status["database"] = "ok"
		}
	}
	if s.store != nil {
		if err := s.store.Healthy(ctx); err != nil {
			status["storage"] = "unreachable"
		} else {
			status["storage"] = "ok"
		}
	}
	return status
}
