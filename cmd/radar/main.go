package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	_ "github.com/adoptioncheck/radar/all"
	"github.com/adoptioncheck/radar/internal/config"
	"github.com/adoptioncheck/radar/internal/pipeline"
	"github.com/adoptioncheck/radar/internal/report"
	"github.com/adoptioncheck/radar/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "radar tracks technology adoption across GitHub, npm, and PyPI",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, score, and persist one snapshot",
	RunE:  runOnce,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run one snapshot and print the markdown digest",
	RunE:  runReport,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run on a cron schedule until interrupted",
	RunE:  runSchedule,
}

var (
	configFlag  string
	dbFlag      string
	verboseFlag bool
	cronFlag    string
	outFlag     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to catalog JSON (built-in catalog if empty)")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "SQLite path (default "+config.DefaultDBPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging")
	scheduleCmd.Flags().StringVar(&cronFlag, "cron", "0 6 * * *", "Cron expression for scheduled runs")
	reportCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write the report to a file instead of stdout")
	rootCmd.AddCommand(runCmd, reportCmd, scheduleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (config.Config, *store.Store, zerolog.Logger, error) {
	// Missing .env is normal; real deployments use the environment.
	_ = godotenv.Load()

	level := zerolog.InfoLevel
	if verboseFlag {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	cfg, err := config.Load(configFlag)
	if err != nil {
		return config.Config{}, nil, log, fmt.Errorf("loading configuration: %w", err)
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return config.Config{}, nil, log, fmt.Errorf("opening store: %w", err)
	}
	return cfg, st, log, nil
}

func buildPipeline() (*pipeline.Pipeline, *store.Store, zerolog.Logger, error) {
	cfg, st, log, err := setup()
	if err != nil {
		return nil, nil, log, err
	}
	collectors, err := pipeline.BuildCollectors(cfg)
	if err != nil {
		st.Close()
		return nil, nil, log, err
	}
	return pipeline.New(cfg, collectors, st, log), st, log, nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	p, st, log, err := buildPipeline()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := p.Run(signalContext())
	if err != nil {
		return err
	}

	for _, list := range res.Lists {
		log.Info().
			Str("list", list.Name).
			Int("technologies", len(list.Scored)).
			Int("hype_signals", len(list.Hype)).
			Msg("list scored")
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	p, st, _, err := buildPipeline()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := p.Run(signalContext())
	if err != nil {
		return err
	}

	md, err := report.Render(res)
	if err != nil {
		return err
	}

	if outFlag != "" {
		return os.WriteFile(outFlag, []byte(md), 0644)
	}
	fmt.Fprint(cmd.OutOrStdout(), md)
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	p, st, log, err := buildPipeline()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := signalContext()

	c := cron.New()
	_, err = c.AddFunc(cronFlag, func() {
		if _, err := p.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronFlag, err)
	}

	log.Info().Str("cron", cronFlag).Msg("scheduler started")
	c.Start()
	<-ctx.Done()
	log.Info().Msg("shutting down")

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
	}
	return nil
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx
}
