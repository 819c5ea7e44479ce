package service

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService. db may be nil when the close store is disabled.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// DatabaseEnabled reports whether a close store database is configured.
func (s *SystemService) DatabaseEnabled() bool {
	return s.db != nil
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return database.HealthCheck(ctx, s.db)
}

// CheckVersion reports the build version and the applied schema version.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	info := model.VersionInfo{
		AppVersion: version.Version,
		Commit:     version.Commit,
		DbVersion:  "none",
		Features: map[string]bool{
			"close_store": s.db != nil,
		},
	}
	if s.db == nil {
		return info, nil
	}

	v, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}
	info.DbVersion = strconv.FormatInt(v, 10)
	return info, nil
}
