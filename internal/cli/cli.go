package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oldmanfooty/carnival-sync/internal/config"
	"github.com/oldmanfooty/carnival-sync/internal/filter"
	"github.com/oldmanfooty/carnival-sync/internal/logger"
	"github.com/oldmanfooty/carnival-sync/internal/reconcile"
	"github.com/oldmanfooty/carnival-sync/internal/scraper"
	"github.com/oldmanfooty/carnival-sync/internal/store"
	syncsvc "github.com/oldmanfooty/carnival-sync/internal/sync"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagFormat  string
	flagVerbose bool
	flagDBPath  string
	flagMock    bool

	flagListState    string
	flagListDates    string
	flagListTitle    string
	flagListWeekends bool
	flagListUpcoming bool
	flagListOpen     bool
	flagListAll      bool
	flagListSort     string
	flagListLimit    int

	flagExportOutput string

	flagStatusRuns int
)

// app bundles the wired pipeline for one command invocation.
type app struct {
	cfg     *config.Config
	store   *store.Store
	service *syncsvc.Service
}

// newApp builds the pipeline from the environment: config, store, scraper,
// reconciler, orchestrator.
func newApp() (*app, error) {
	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	cfg, err := config.FromEnv()
	if err != nil && cfg == nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if flagDBPath != "" {
		cfg.DatabasePath = flagDBPath
	}
	if flagMock {
		cfg.UseMock = true
	}
	// Flags can satisfy what the environment left invalid, so validate the
	// overridden configuration rather than the raw one.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening carnival store: %w", err)
	}

	service := syncsvc.NewService(cfg, scraper.New(cfg), st, reconcile.NewReconciler(st))
	return &app{cfg: cfg, store: st, service: service}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close carnival store", logger.Fields{"error": err.Error()})
	}
}

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "carnival-sync",
		Short: "Sync Masters carnivals from MySideline",
		Long: `carnival-sync scrapes the MySideline club search page for Masters
rugby league carnivals and reconciles them into the carnival database.
Manually entered carnivals are never overwritten; syncs only fill fields
that are still empty.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagDBPath, "db", "", "Carnival database path (overrides "+config.EnvDatabasePath+")")
	root.PersistentFlags().BoolVar(&flagMock, "mock", false, "Use synthetic events instead of scraping")

	root.AddCommand(newSyncCmd())
	root.AddCommand(newDaemonCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newExportCmd())

	return root
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync now",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.service.Sync(cmd.Context(), store.RunTypeManual)
			if err != nil {
				return err
			}
			return writeSyncResult(os.Stdout, result, outputFormat())
		},
	}
}

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the daily sync scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			scheduler := syncsvc.NewScheduler(a.service)
			if err := scheduler.Start(cmd.Context()); err != nil {
				return err
			}
			defer scheduler.Stop()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			select {
			case sig := <-stop:
				logger.Info("Shutting down", logger.Fields{"signal": sig.String()})
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pipeline status and recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			status, err := a.service.Status(cmd.Context())
			if err != nil {
				return err
			}
			runs, err := a.store.LatestRuns(cmd.Context(), flagStatusRuns)
			if err != nil {
				return err
			}
			return writeStatus(os.Stdout, status, runs, outputFormat())
		},
	}
	cmd.Flags().IntVar(&flagStatusRuns, "runs", 5, "How many recent runs to show")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List carnivals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			carnivals, err := a.listCarnivals(cmd)
			if err != nil {
				return err
			}
			sortCarnivals(carnivals, SortOrder(flagListSort))
			return writeCarnivals(os.Stdout, carnivals, outputFormat(), flagVerbose)
		},
	}
	addListFlags(cmd)
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export carnivals as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			carnivals, err := a.listCarnivals(cmd)
			if err != nil {
				return err
			}
			sortCarnivals(carnivals, SortByDate)
			return writeCalendarExport(carnivals, flagExportOutput)
		},
	}
	addListFlags(cmd)
	cmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagListState, "state", "", "State filter, e.g. NSW or Queensland")
	cmd.Flags().StringVar(&flagListDates, "dates", "", "Date range, e.g. 'Mar 1-15' or 'June'")
	cmd.Flags().StringVar(&flagListTitle, "title", "", "Title substring filter")
	cmd.Flags().BoolVar(&flagListWeekends, "weekends", false, "Weekend carnivals only")
	cmd.Flags().BoolVar(&flagListUpcoming, "upcoming", false, "Carnivals dated today or later")
	cmd.Flags().BoolVar(&flagListOpen, "open", false, "Carnivals with open registration")
	cmd.Flags().BoolVar(&flagListAll, "all", false, "Include deactivated carnivals")
	cmd.Flags().StringVar(&flagListSort, "sort", "date", "Sort order: date, state, or title")
	cmd.Flags().IntVar(&flagListLimit, "limit", 0, "Maximum carnivals to return (0 = no limit)")
}

// listCarnivals loads carnivals and applies the list flags. The state and
// upcoming criteria push down to the store query; the rest filter in memory.
func (a *app) listCarnivals(cmd *cobra.Command) ([]*store.Carnival, error) {
	now := timeNow()

	f := filter.New()
	if flagListState != "" {
		f.States = []string{flagListState}
	}
	if flagListTitle != "" {
		f.Titles = []string{flagListTitle}
	}
	f.WeekendsOnly = flagListWeekends
	f.OpenOnly = flagListOpen
	if flagListDates != "" {
		from, to, err := filter.ParseDateRange(flagListDates, now)
		if err != nil {
			return nil, fmt.Errorf("parsing --dates: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}

	carnivals, err := a.store.ListCarnivals(cmd.Context(), store.ListOptions{
		UpcomingOnly: flagListUpcoming,
		ActiveOnly:   !flagListAll,
		Limit:        flagListLimit,
	})
	if err != nil {
		return nil, err
	}
	return f.Apply(carnivals, now), nil
}

func outputFormat() OutputFormat {
	return OutputFormat(flagFormat)
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
