package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
)

type fakeComputer struct {
	calls   atomic.Int32
	fail    atomic.Bool
	release chan struct{}
}

func (f *fakeComputer) Compute(_ context.Context, base model.Currency) (*model.Valuation, error) {
	n := f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.fail.Load() {
		return nil, errors.New("ledger unreadable")
	}
	return &model.Valuation{BaseCurrency: base, RunID: string(rune('a' + n))}, nil
}

func TestValuationCache(t *testing.T) {
	ctx := context.Background()

	t.Run("not available before first refresh", func(t *testing.T) {
		c := service.NewValuationCache(&fakeComputer{}, model.SupportedCurrencies)

		if _, err := c.Get(model.USD); !errors.Is(err, apperrors.ErrValuationNotAvailable) {
			t.Errorf("Get() error = %v, want ErrValuationNotAvailable", err)
		}
	})

	t.Run("refresh fills every currency", func(t *testing.T) {
		f := &fakeComputer{}
		c := service.NewValuationCache(f, model.SupportedCurrencies)

		if err := c.Refresh(ctx); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		for _, base := range model.SupportedCurrencies {
			v, err := c.Get(base)
			if err != nil {
				t.Fatalf("Get(%s) error = %v", base, err)
			}
			if v.BaseCurrency != base {
				t.Errorf("Get(%s).BaseCurrency = %s", base, v.BaseCurrency)
			}
		}
		if got := f.calls.Load(); got != 2 {
			t.Errorf("Compute calls = %d, want 2", got)
		}
	})

	t.Run("failure keeps previous entry", func(t *testing.T) {
		f := &fakeComputer{}
		c := service.NewValuationCache(f, []model.Currency{model.EUR})

		if err := c.Refresh(ctx); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		before, _ := c.Get(model.EUR)

		f.fail.Store(true)
		if err := c.Refresh(ctx); err == nil {
			t.Fatal("Refresh() error = nil, want error")
		}
		after, err := c.Get(model.EUR)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if after != before {
			t.Error("failed refresh replaced the cached valuation")
		}
	})

	t.Run("failure before first success stays unavailable", func(t *testing.T) {
		f := &fakeComputer{}
		f.fail.Store(true)
		c := service.NewValuationCache(f, []model.Currency{model.USD})

		_ = c.Refresh(ctx)
		if _, err := c.Get(model.USD); !errors.Is(err, apperrors.ErrValuationNotAvailable) {
			t.Errorf("Get() error = %v, want ErrValuationNotAvailable", err)
		}
	})

	// WHY: the timer and a manual refresh may fire together; only one run should hit the data source.
	t.Run("concurrent refreshes collapse", func(t *testing.T) {
		f := &fakeComputer{release: make(chan struct{})}
		c := service.NewValuationCache(f, []model.Currency{model.USD})

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = c.Refresh(ctx)
			}()
		}

		deadline := time.Now().Add(5 * time.Second)
		for f.calls.Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		// Give the other callers time to join the in-flight refresh.
		time.Sleep(20 * time.Millisecond)
		close(f.release)
		wg.Wait()

		if got := f.calls.Load(); got != 1 {
			t.Errorf("Compute calls = %d, want 1", got)
		}
	})
}
