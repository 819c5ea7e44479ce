package service_test

import (
	"context"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/testutil"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/version"
)

func TestSystemService(t *testing.T) {
	ctx := context.Background()

	t.Run("without database", func(t *testing.T) {
		s := service.NewSystemService(nil)

		if err := s.CheckHealth(ctx); err != nil {
			t.Errorf("CheckHealth() error = %v", err)
		}
		info, err := s.CheckVersion(ctx)
		if err != nil {
			t.Fatalf("CheckVersion() error = %v", err)
		}
		if info.AppVersion != version.Version || info.DbVersion != "none" || info.Features["close_store"] {
			t.Errorf("CheckVersion() = %+v", info)
		}
	})

	t.Run("with migrated database", func(t *testing.T) {
		s := service.NewSystemService(testutil.SetupTestDB(t))

		info, err := s.CheckVersion(ctx)
		if err != nil {
			t.Fatalf("CheckVersion() error = %v", err)
		}
		if info.DbVersion != "1" || !info.Features["close_store"] {
			t.Errorf("CheckVersion() = %+v", info)
		}
	})

	t.Run("closed database is unhealthy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		s := service.NewSystemService(db)
		db.Close()

		if err := s.CheckHealth(ctx); err == nil {
			t.Error("CheckHealth() error = nil, want error")
		}
	})
}
