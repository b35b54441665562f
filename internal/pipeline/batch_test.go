package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sitescout/sitescout/internal/model"
)

// countingStep tracks concurrent executions.
type countingStep struct {
	mu      sync.Mutex
	active  int
	peak    int
	started chan struct{}
	release chan struct{}
}

func (s *countingStep) Name() string { return "counting" }

func (s *countingStep) Do(_ context.Context, _ *model.CrawlReport) error {
	s.mu.Lock()
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	s.mu.Unlock()

	s.started <- struct{}{}
	<-s.release

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return nil
}

func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("reports match input order", func(t *testing.T) {
		t.Parallel()

		factory := func(site string) (*Pipeline, *model.CrawlReport, error) {
			return New(), model.NewCrawlReport(site, nil), nil
		}
		bp := NewBatchProcessor(factory, WithConcurrency(2))

		sites := []string{"alpha", "beta", "gamma"}
		reports, err := bp.ProcessBatch(context.Background(), sites)
		if err != nil {
			t.Fatal(err)
		}
		if len(reports) != len(sites) {
			t.Fatalf("got %d reports, want %d", len(reports), len(sites))
		}
		for i, site := range sites {
			if reports[i] == nil || reports[i].Site != site {
				t.Errorf("reports[%d].Site = %v, want %s", i, reports[i], site)
			}
		}
	})

	t.Run("concurrency limit is respected", func(t *testing.T) {
		t.Parallel()

		step := &countingStep{
			started: make(chan struct{}, 4),
			release: make(chan struct{}),
		}
		factory := func(site string) (*Pipeline, *model.CrawlReport, error) {
			p := New()
			p.AddStep(step)
			return p, model.NewCrawlReport(site, nil), nil
		}
		bp := NewBatchProcessor(factory, WithConcurrency(2))

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = bp.ProcessBatch(context.Background(), []string{"a", "b", "c", "d"})
		}()

		// Two runs start immediately; the rest wait on the limit.
		<-step.started
		<-step.started
		close(step.release)
		<-done

		step.mu.Lock()
		defer step.mu.Unlock()
		if step.peak > 2 {
			t.Errorf("peak concurrency = %d, want at most 2", step.peak)
		}
	})

	t.Run("failed run keeps its report and other sites continue", func(t *testing.T) {
		t.Parallel()

		var runs atomic.Int32
		factory := func(site string) (*Pipeline, *model.CrawlReport, error) {
			p := New()
			p.AddStep(stepFunc(func(_ context.Context, report *model.CrawlReport) error {
				runs.Add(1)
				if site == "bad" {
					return errors.New("crawl exploded")
				}
				return nil
			}))
			return p, model.NewCrawlReport(site, nil), nil
		}
		bp := NewBatchProcessor(factory, WithConcurrency(1))

		reports, err := bp.ProcessBatch(context.Background(), []string{"bad", "good"})
		if err != nil {
			t.Fatalf("batch error = %v, want nil", err)
		}
		if runs.Load() != 2 {
			t.Errorf("ran %d sites, want 2", runs.Load())
		}
		if reports[0].ErrorMessage == "" {
			t.Error("failed site's report carries no error")
		}
		if reports[1].ErrorMessage != "" {
			t.Errorf("healthy site's report carries error %q", reports[1].ErrorMessage)
		}
	})

	t.Run("factory failure aborts the batch", func(t *testing.T) {
		t.Parallel()

		factory := func(site string) (*Pipeline, *model.CrawlReport, error) {
			return nil, nil, errors.New("unknown site")
		}
		bp := NewBatchProcessor(factory)

		if _, err := bp.ProcessBatch(context.Background(), []string{"x"}); err == nil {
			t.Fatal("expected factory error to surface")
		}
	})
}

// stepFunc adapts a function to the Step interface for tests.
type stepFunc func(ctx context.Context, report *model.CrawlReport) error

func (stepFunc) Name() string { return "func" }

func (f stepFunc) Do(ctx context.Context, report *model.CrawlReport) error {
	return f(ctx, report)
}
