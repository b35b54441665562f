package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/sitescout/sitescout/internal/model"
)

// fakeStep records whether it ran and optionally fails.
type fakeStep struct {
	name string
	err  error
	ran  *[]string
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Do(_ context.Context, _ *model.CrawlReport) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("steps run in order", func(t *testing.T) {
		t.Parallel()

		var ran []string
		p := New()
		p.AddSteps(
			&fakeStep{name: "first", ran: &ran},
			&fakeStep{name: "second", ran: &ran},
			&fakeStep{name: "third", ran: &ran},
		)

		report := model.NewCrawlReport("example.com", nil)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatal(err)
		}

		want := []string{"first", "second", "third"}
		if !slices.Equal(ran, want) {
			t.Errorf("ran = %v, want %v", ran, want)
		}
		if !slices.Equal(report.PerformedSteps, want) {
			t.Errorf("PerformedSteps = %v, want %v", report.PerformedSteps, want)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		var ran []string
		stepErr := errors.New("boom")
		p := New()
		p.AddSteps(
			&fakeStep{name: "first", ran: &ran},
			&fakeStep{name: "failing", err: stepErr, ran: &ran},
			&fakeStep{name: "after", ran: &ran},
		)

		report := model.NewCrawlReport("example.com", nil)
		if err := p.Execute(context.Background(), report); !errors.Is(err, stepErr) {
			t.Fatalf("error = %v, want %v", err, stepErr)
		}
		if slices.Contains(ran, "after") {
			t.Error("step after the failure still ran")
		}
		if report.ErrorMessage != "boom" {
			t.Errorf("ErrorMessage = %q, want %q", report.ErrorMessage, "boom")
		}
	})

	t.Run("continue on error runs remaining steps", func(t *testing.T) {
		t.Parallel()

		var ran []string
		p := New(WithContinueOnError(true))
		p.AddSteps(
			&fakeStep{name: "failing", err: errors.New("boom"), ran: &ran},
			&fakeStep{name: "after", ran: &ran},
		)

		report := model.NewCrawlReport("example.com", nil)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Contains(ran, "after") {
			t.Error("step after the failure did not run")
		}
		if report.Error == nil {
			t.Error("report does not carry the recorded error")
		}
	})

	t.Run("cancellation stops before the next step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ran []string
		p := New()
		p.AddStep(&fakeStep{name: "never", ran: &ran})

		report := model.NewCrawlReport("example.com", nil)
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		if len(ran) != 0 {
			t.Errorf("steps ran after cancellation: %v", ran)
		}
	})
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	var ran []string
	p := New()
	p.AddSteps(
		&fakeStep{name: "a", ran: &ran},
		&fakeStep{name: "b", ran: &ran},
	)

	if p.StepCount() != 2 {
		t.Errorf("StepCount = %d, want 2", p.StepCount())
	}
	if got := p.StepNames(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("StepNames = %v", got)
	}
}
