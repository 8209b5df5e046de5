package main

import (
	"errors"
	"fmt"
	"os"

	"meal-survey/internal/app"
	"meal-survey/internal/catalog"
	"meal-survey/internal/config"
	"meal-survey/internal/database"
	"meal-survey/internal/logging"
	"meal-survey/internal/metrics"
	"meal-survey/internal/submission"
	"meal-survey/internal/surveyapi"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	e := &env{}
	err := newRootCommand(e).Execute()
	e.close()
	if err != nil {
		os.Exit(1)
	}
}

// env is built once per invocation, before any subcommand runs.
type env struct {
	app *app.App
	db  *database.DB
	log *zap.Logger
}

func newRootCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "meal-survey",
		Short:         "Meal preference survey tools",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.open()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newMenuCommand(e),
		newSubmitCommand(e),
		newHistoryCommand(e),
		newCleanupCommand(e),
	)
	return cmd
}

func (e *env) open() error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	e.log, err = logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	e.db, err = database.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	var transport submission.Transport
	client, err := surveyapi.NewClient(cfg)
	switch {
	case err == nil:
		transport = client
	case errors.Is(err, submission.ErrNotConfigured):
		e.log.Debug("survey backend not configured", zap.Error(err))
	default:
		return err
	}

	e.app = app.NewApp(cfg, transport, metrics.NewStore(e.db.SQL), e.log)
	return nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

func newMenuCommand(e *env) *cobra.Command {
	var plan string
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the breakfast, lunch and dinner options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := catalog.PlanUnset
			if plan != "" {
				var err error
				if p, err = catalog.ParsePlan(plan); err != nil {
					return err
				}
			}
			e.app.SetOutput(cmd.OutOrStdout())
			e.app.PrintMenu(p)
			return nil
		},
	}
	cmd.Flags().StringVar(&plan, "plan", "", "Plan whose lunch and dinner menus to show")
	return cmd
}

func newSubmitCommand(e *env) *cobra.Command {
	var (
		userID                   string
		plan                     string
		breakfast, lunch, dinner []int
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Fill in and submit a survey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.SubmitRequest{
				UserID: userID,
				Selections: map[catalog.Slot][]catalog.OrdinalKey{
					catalog.SlotBreakfast: toKeys(breakfast),
					catalog.SlotLunch:     toKeys(lunch),
					catalog.SlotDinner:    toKeys(dinner),
				},
			}
			if plan != "" {
				p, err := catalog.ParsePlan(plan)
				if err != nil {
					return err
				}
				req.Plan = p
			}
			e.app.SetOutput(cmd.OutOrStdout())
			_, err := e.app.Submit(cmd.Context(), req)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id the survey is submitted for")
	cmd.Flags().StringVar(&plan, "plan", "", "Plan category (Standard Veg, Standard Non-Veg, High-Protein Veg, High-Protein Non-Veg)")
	cmd.Flags().IntSliceVar(&breakfast, "breakfast", nil, "Breakfast option keys, e.g. 0,2")
	cmd.Flags().IntSliceVar(&lunch, "lunch", nil, "Lunch option keys")
	cmd.Flags().IntSliceVar(&dinner, "dinner", nil, "Dinner option keys")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newHistoryCommand(e *env) *cobra.Command {
	var (
		userID string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded submission attempts of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.app.SetOutput(cmd.OutOrStdout())
			return e.app.History(cmd.Context(), userID, limit)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of attempts to show")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newCleanupCommand(e *env) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old submission attempt records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.app.SetOutput(cmd.OutOrStdout())
			return e.app.CleanupMetrics(cmd.Context(), days)
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Keep records for the last N days")
	return cmd
}

func toKeys(in []int) []catalog.OrdinalKey {
	keys := make([]catalog.OrdinalKey, 0, len(in))
	for _, k := range in {
		keys = append(keys, catalog.OrdinalKey(k))
	}
	return keys
}
