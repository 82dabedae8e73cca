package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-user-audit/internal/auditor"
	"github.com/kurihiro0119/github-user-audit/internal/checkpoint"
	"github.com/kurihiro0119/github-user-audit/internal/collector"
	"github.com/kurihiro0119/github-user-audit/internal/config"
	"github.com/kurihiro0119/github-user-audit/internal/domain"
	"github.com/kurihiro0119/github-user-audit/internal/errlog"
	"github.com/kurihiro0119/github-user-audit/internal/history"
	"github.com/kurihiro0119/github-user-audit/internal/history/postgres"
	"github.com/kurihiro0119/github-user-audit/internal/history/sqlite"
	"github.com/kurihiro0119/github-user-audit/internal/logging"
	"github.com/kurihiro0119/github-user-audit/internal/report"
	"github.com/kurihiro0119/github-user-audit/pkg/client"
)

var (
	outputJSON bool
	fresh      bool
	remote     bool
	orgsFlag   []string
	usersFlag  []string
	outputPath string
	showLimit  int
)

var rootCmd = &cobra.Command{
	Use:   "github-user-audit",
	Short: "GitHub user activity audit tool",
	Long: `A CLI tool for auditing recent GitHub activity of a fixed set of users.

The audit walks every repository of the configured organizations and
checks, per user, for commits to the default branch, commits to any
branch, and any repository event, stopping as soon as every user has
satisfied all three conditions.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the activity audit",
	Long:  `Run the audit across the configured organizations and write the spreadsheet report.`,
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

var showCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a stored audit run",
	Long:  `Display a stored audit run. Shows the most recent run when no ID is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

var showRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored audit runs",
	Long:  `List recent audit runs, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runShowRuns,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	runCmd.Flags().StringSliceVar(&orgsFlag, "orgs", nil, "organizations to audit (overrides AUDIT_ORGS)")
	runCmd.Flags().StringSliceVar(&usersFlag, "users", nil, "user logins to audit (overrides AUDIT_USERS)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "report path (overrides REPORT_PATH)")
	runCmd.Flags().BoolVar(&fresh, "fresh", false, "ignore any existing checkpoint and rescan everything")

	showCmd.PersistentFlags().BoolVar(&remote, "remote", false, "read runs from the results API (API_ENDPOINT) instead of local storage")
	showRunsCmd.Flags().IntVar(&showLimit, "limit", 20, "maximum number of runs to list")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showRunsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getStore(cfg *config.Config) (history.Store, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStore(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStore(cfg.SQLitePath)
	}
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(orgsFlag) > 0 {
		cfg.Orgs = orgsFlag
	}
	if len(usersFlag) > 0 {
		cfg.Logins = usersFlag
	}
	if outputPath != "" {
		cfg.ReportPath = outputPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	errLog := errlog.New(cfg.ErrorLogPath)
	source := collector.New(cfg.GitHubToken, cfg.MaxPages, errLog, logger)
	checkpoints := checkpoint.NewStore(cfg.CheckpointPath)
	aud := auditor.New(source, checkpoints, cfg.Windows(), logger)

	ctx := context.Background()

	fmt.Printf("Auditing organizations: %s\n", strings.Join(cfg.Orgs, ", "))
	fmt.Printf("Tracking users: %s\n", strings.Join(cfg.Logins, ", "))

	result, err := aud.Run(ctx, cfg.Orgs, cfg.Logins, !fresh)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	records := result.Summary.Rows()

	if err := report.WriteWorkbook(cfg.ReportPath, records, result.RepoAudit, cfg.Windows()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := report.WriteAuditCSV(cfg.AuditCSVPath, result.RepoAudit); err != nil {
		fmt.Printf("Warning: failed to write audit CSV %s: %v\n", cfg.AuditCSVPath, err)
	}

	run := &domain.AuditRun{
		ID:         uuid.New().String(),
		Orgs:       cfg.Orgs,
		Logins:     cfg.Logins,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Summary:    records,
		RepoAudit:  result.RepoAudit,
	}
	saveRunHistory(ctx, cfg, run)

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Println()
	report.RenderSummary(os.Stdout, records, cfg.Windows())
	fmt.Println()
	report.RenderAudit(os.Stdout, result.RepoAudit)
	fmt.Printf("\nReport written to %s\n", cfg.ReportPath)
	return nil
}

// saveRunHistory is best effort: the spreadsheet report is already on
// disk, so a broken history store only costs the archive copy.
func saveRunHistory(ctx context.Context, cfg *config.Config, run *domain.AuditRun) {
	if cfg.StorageType == "off" {
		return
	}
	store, err := getStore(cfg)
	if err != nil {
		fmt.Printf("Warning: failed to initialize run history storage: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.SaveRun(ctx, run); err != nil {
		fmt.Printf("Warning: failed to save run history: %v\n", err)
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var run *domain.AuditRun
	if remote {
		c := client.NewClient(cfg.APIEndpoint)
		if len(args) == 1 {
			run, err = c.GetRun(args[0])
		} else {
			run, err = c.GetLatestRun()
		}
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
	} else {
		if cfg.StorageType == "off" {
			return fmt.Errorf("run history storage is disabled (STORAGE_TYPE=off)")
		}

		store, err := getStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		ctx := context.Background()
		if len(args) == 1 {
			run, err = store.GetRun(ctx, args[0])
		} else {
			run, err = store.GetLatestRun(ctx)
		}
		if err != nil {
			if errors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("no matching audit run found")
			}
			return fmt.Errorf("failed to load run: %w", err)
		}
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("\nAudit Run: %s\n", run.ID)
	fmt.Printf("Organizations: %s\n", strings.Join(run.Orgs, ", "))
	fmt.Printf("Users: %s\n", strings.Join(run.Logins, ", "))
	fmt.Printf("Started: %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Printf("Finished: %s\n\n", run.FinishedAt.Format(time.RFC3339))

	report.RenderSummary(os.Stdout, run.Summary, cfg.Windows())
	fmt.Println()
	report.RenderAudit(os.Stdout, run.RepoAudit)
	return nil
}

func runShowRuns(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var runs []*domain.AuditRun
	if remote {
		list, err := client.NewClient(cfg.APIEndpoint).ListRuns(showLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		for i := range list {
			runs = append(runs, &list[i])
		}
	} else {
		if cfg.StorageType == "off" {
			return fmt.Errorf("run history storage is disabled (STORAGE_TYPE=off)")
		}

		store, err := getStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		runs, err = store.ListRuns(context.Background(), showLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Orgs", "Users", "Repos", "Started", "Finished"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			strings.Join(r.Orgs, ","),
			fmt.Sprintf("%d", len(r.Logins)),
			fmt.Sprintf("%d", len(r.RepoAudit)),
			r.StartedAt.Format("2006-01-02 15:04"),
			r.FinishedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()

	return nil
}
