package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"meal-survey/internal/catalog"
	"meal-survey/internal/config"
	"meal-survey/internal/metrics"
	"meal-survey/internal/submission"
	"meal-survey/internal/wizard"

	"go.uber.org/zap"
)

// ErrMetricsDisabled is returned by commands that need the metrics store.
var ErrMetricsDisabled = errors.New("metrics store is not available")

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	menus        *catalog.Resolver
	transport    submission.Transport
	metricsStore *metrics.Store
	log          *zap.Logger
	out          io.Writer
}

// NewApp creates and initializes a new App instance. transport and
// metricsStore may be nil.
func NewApp(cfg *config.Config, transport submission.Transport, metricsStore *metrics.Store, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		cfg:          cfg,
		menus:        catalog.Default,
		transport:    transport,
		metricsStore: metricsStore,
		log:          log,
		out:          os.Stdout,
	}
}

// SetOutput redirects command output.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// PrintMenu prints every section with the options offered under plan.
func (a *App) PrintMenu(plan catalog.PlanCategory) {
	shown := plan
	if !shown.Valid() {
		shown = catalog.DefaultPlan
	}
	fmt.Fprintf(a.out, "=== MENU (%s) ===\n", shown)

	for _, slot := range catalog.Slots() {
		section := catalog.SectionFor(slot)
		fmt.Fprintf(a.out, "\n%s\n", section.Title)
		for _, opt := range a.menus.Resolve(slot, plan) {
			fmt.Fprintf(a.out, "  [%d] %-10s %s", opt.Key, opt.Day, opt.Name)
			if opt.Description != "" {
				fmt.Fprintf(a.out, " (%s)", opt.Description)
			}
			fmt.Fprintln(a.out)
		}
	}
}

// SubmitRequest is a completed survey given on the command line.
type SubmitRequest struct {
	UserID     string
	Plan       catalog.PlanCategory
	Selections map[catalog.Slot][]catalog.OrdinalKey
}

// Submit walks a wizard through req the way a user would and submits the
// result.
func (a *App) Submit(ctx context.Context, req SubmitRequest) (*submission.Record, error) {
	if req.UserID == "" {
		return nil, errors.New("user id is required")
	}

	w := wizard.New(wizard.VariantFor(a.cfg.WizardPlanStep), a.menus)
	if w.Variant() == wizard.WithPlanStep {
		if err := w.ChoosePlan(req.Plan); err != nil {
			return nil, fmt.Errorf("failed to choose plan: %w", err)
		}
	} else if req.Plan != catalog.PlanUnset {
		return nil, fmt.Errorf("plan %q given: %w", req.Plan, wizard.ErrNoPlanStep)
	}

	for {
		if slot, ok := w.Step().Slot(); ok {
			for _, key := range req.Selections[slot] {
				if err := w.Toggle(key, true); err != nil {
					return nil, fmt.Errorf("failed to select %s option %d: %w", slot, key, err)
				}
			}
		}
		if !w.Advance() {
			break
		}
	}

	submitter := submission.NewSubmitter(a.transport, submission.NewAssembler(a.menus), a.recorder(), a.log)
	rec, err := submitter.Submit(ctx, w, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to submit survey: %w", err)
	}

	fmt.Fprintf(a.out, "Survey %s submitted for %s.\n", rec.Payload.SurveyID, rec.Payload.UserID)
	if rec.Payload.Plan != nil {
		fmt.Fprintf(a.out, "Plan: %s\n", *rec.Payload.Plan)
	}
	for _, slot := range catalog.Slots() {
		fmt.Fprintf(a.out, "\n%s:\n", slot)
		labels := rec.Payload.Answers.For(slot)
		if len(labels) == 0 {
			fmt.Fprintln(a.out, "  None selected")
		}
		for _, l := range labels {
			fmt.Fprintf(a.out, "  - %s\n", l)
		}
	}
	return rec, nil
}

// History prints the most recent submission attempts of a user.
func (a *App) History(ctx context.Context, userID string, limit int) error {
	if a.metricsStore == nil {
		return ErrMetricsDisabled
	}
	attempts, err := a.metricsStore.ListByUser(ctx, userID, limit)
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}
	if len(attempts) == 0 {
		fmt.Fprintf(a.out, "No submissions recorded for %s.\n", userID)
		return nil
	}
	for _, m := range attempts {
		plan := m.Plan
		if plan == "" {
			plan = "-"
		}
		fmt.Fprintf(a.out, "%s  %-9s  %s  plan=%s  %dms",
			m.Timestamp.Format("2006-01-02 15:04:05"), m.Status, m.SurveyID, plan, m.LatencyMS)
		if m.Error != "" {
			fmt.Fprintf(a.out, "  error=%s", m.Error)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

// CleanupMetrics removes attempts older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) error {
	if a.metricsStore == nil {
		return ErrMetricsDisabled
	}
	if days < 0 {
		return fmt.Errorf("days must not be negative, got %d", days)
	}
	affected, err := a.metricsStore.Cleanup(ctx, days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Fprintf(a.out, "Successfully removed %d old metric records.\n", affected)
	return nil
}

func (a *App) recorder() submission.Recorder {
	if a.metricsStore == nil {
		return nil
	}
	return a.metricsStore
}
