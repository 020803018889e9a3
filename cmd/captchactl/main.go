package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/x/twocaptcha"
	"github.com/x/twocaptcha/internal/config"
	"github.com/x/twocaptcha/internal/ledger"
)

// Package-level flag variables shared across subcommands.
var (
	flagConfigPath  string
	flagAPIKey      string
	flagBrowser     string
	flagTimeout     string
	flagVerbose     bool
	flagJSONOutput  bool
	flagNoLedger    bool
	flagMaxParallel int
	flagCorrect     bool
	flagIncorrect   bool
	flagLast        bool
	flagInvisible   bool
)

// pollSleep is handed to the client as its wait between polls. Nil
// waits on a real timer.
var pollSleep func(ctx context.Context, d time.Duration) error

func main() {
	rootCmd := newRootCmd()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "captchactl [flags] [command]",
		Short: "Solve captchas through a 2captcha-compatible service",
		Long: `captchactl submits captcha challenges to a remote solving service,
waits for the workers to finish and prints the solution. Solved tasks are
kept in a local ledger so they can be reported as good or bad later.`,
		SilenceUsage: true,
	}

	// Persistent flags, shared by all subcommands.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigPath, "config", config.DefaultPath(), "config file")
	pf.StringVar(&flagAPIKey, "api-key", "", "service API key (overrides config and TWOCAPTCHA_API_KEY)")
	pf.StringVarP(&flagBrowser, "browser", "b", "", "TLS fingerprint to use: chrome, firefox (default: standard TLS)")
	pf.StringVarP(&flagTimeout, "timeout", "t", "", "overall solve timeout, e.g. 3m")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "log requests and state changes to stderr")
	pf.BoolVarP(&flagJSONOutput, "json", "j", false, "output JSON with solution and metadata")
	pf.BoolVar(&flagNoLedger, "no-ledger", false, "don't load/save the task ledger")

	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newBalanceCmd())
	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newHistoryCmd())
	return rootCmd
}

// app bundles what a command needs after flags and config are resolved.
type app struct {
	cfg    config.Config
	client *twocaptcha.Client
	ledger *ledger.Ledger
	log    *slog.Logger
}

func newApp(stderr io.Writer) (*app, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagBrowser != "" {
		cfg.Browser = flagBrowser
	}

	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	clientCfg := cfg.Client(logger)
	clientCfg.Sleep = pollSleep
	if flagTimeout != "" {
		dur, err := time.ParseDuration(flagTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", flagTimeout, err)
		}
		clientCfg.Timeout = dur
	}

	client, err := twocaptcha.New(clientCfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, client: client, log: logger}
	if !flagNoLedger && !cfg.Ledger.Disabled {
		a.ledger = ledger.New(cfg.Ledger.Path)
		if err := a.ledger.Load(); err != nil {
			return nil, fmt.Errorf("failed to load ledger: %w", err)
		}
	}
	return a, nil
}

func (a *app) saveLedger() {
	if a.ledger == nil {
		return
	}
	if err := a.ledger.Save(); err != nil {
		a.log.Warn("failed to save ledger", "err", err)
	}
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [task-id]",
		Short: "Report a solved task as correct or incorrect",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagCorrect == flagIncorrect {
				return errors.New("exactly one of --good or --bad is required")
			}
			a, err := newApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			id, err := reportTarget(a, args)
			if err != nil {
				return err
			}

			var opts []twocaptcha.ReportOption
			if flagInvisible {
				opts = append(opts, twocaptcha.WithInvisible())
			}
			if err := a.client.ReportTask(cmd.Context(), id, flagCorrect, opts...); err != nil {
				return err
			}
			if a.ledger != nil {
				a.ledger.MarkReported(id, flagCorrect)
				a.saveLedger()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reported task %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagCorrect, "good", false, "the solution was accepted")
	cmd.Flags().BoolVar(&flagIncorrect, "bad", false, "the solution was rejected")
	cmd.Flags().BoolVar(&flagLast, "last", false, "report the most recent task in the ledger")
	cmd.Flags().BoolVar(&flagInvisible, "invisible", false, "the challenge was an invisible one")
	return cmd
}

// reportTarget resolves the task id from the argument or the ledger.
func reportTarget(a *app, args []string) (uint64, error) {
	if len(args) == 1 {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid task id %q: %w", args[0], err)
		}
		return id, nil
	}
	if !flagLast {
		return 0, errors.New("give a task id or --last")
	}
	if a.ledger == nil {
		return 0, errors.New("--last needs the ledger")
	}
	last, ok := a.ledger.Last()
	if !ok {
		return 0, errors.New("the ledger is empty")
	}
	return last.TaskID, nil
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			balance, err := a.client.Balance(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance)
			return nil
		},
	}
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect [file]",
		Short: "List captcha widgets declared in an HTML page (stdin when no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			body, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			widgets, err := twocaptcha.DetectWidgets(body)
			if err != nil {
				return fmt.Errorf("parse html: %w", err)
			}
			formatWidgets(cmd.OutOrStdout(), widgets, flagJSONOutput)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recently solved tasks from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			l := ledger.New(cfg.Ledger.Path)
			if err := l.Load(); err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}
			formatHistory(cmd.OutOrStdout(), l.Entries(), flagJSONOutput)
			return nil
		},
	}
}

// exitCode maps error kinds to distinct exit statuses so scripts can
// tell a rejected task from a slow one.
func exitCode(err error) int {
	switch {
	case errors.Is(err, twocaptcha.ErrTimeout):
		return 3
	case errors.Is(err, twocaptcha.ErrRemoteRejected), errors.Is(err, twocaptcha.ErrRemoteFailed):
		return 4
	case errors.Is(err, twocaptcha.ErrInvalidInput):
		return 2
	default:
		return 1
	}
}
