package pipeline

import (
	"context"
	"log/slog"

	"github.com/sitescout/sitescout/internal/model"
)

// Step is one stage of a crawl run. Steps run in order and communicate
// only through the shared CrawlReport: the known-set loader fills
// report.Known, the crawl step appends report.Records, and the
// persistence steps read the final list.
//
// A step returns an error only for failures that invalidate the run;
// anything recoverable belongs in the report instead.
type Step interface {
	// Do runs the step against the accumulated report.
	Do(ctx context.Context, report *model.CrawlReport) error

	// Name identifies the step in logs and in report.PerformedSteps.
	Name() string
}

// Pipeline runs an ordered list of steps for one site.
type Pipeline struct {
	// steps in execution order.
	steps []Step

	// logger records step boundaries and failures.
	logger *slog.Logger

	// continueOnError keeps later steps running after a failure, so a
	// crawl that died halfway still reaches the persistence steps.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps the pipeline running after a step fails.
// The failure is logged and recorded on the report, and later steps
// still execute.
//
// Design decision: The default is to stop on the first error because:
// 1. An unreadable known-URL file poisons every later step
// 2. An unwritable inventory makes crawling pointless
// 3. The crawl command opts in explicitly, so partial crawls persist
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty pipeline; add stages with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends one step. Execution order is insertion order.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps at once.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step in order against the report. Cancellation is
// checked between steps; steps watch the context themselves while they
// run. The first step error is returned unless continueOnError is set,
// in which case it is recorded on the report and Execute returns nil.
func (p *Pipeline) Execute(ctx context.Context, report *model.CrawlReport) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run cancelled before step",
				"step", step.Name(), "site", report.Site, "reason", err)
			return err
		}

		p.logger.Debug("step starting", "step", step.Name(), "site", report.Site)

		err := step.Do(ctx, report)
		report.PerformedSteps = append(report.PerformedSteps, step.Name())

		if err != nil {
			p.logger.Error("step failed",
				"step", step.Name(), "site", report.Site, "error", err)
			report.Error = err
			report.ErrorMessage = err.Error()
			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step finished", "step", step.Name(), "site", report.Site)
	}
	return nil
}

// StepCount reports how many steps the pipeline holds.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns every step name in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
