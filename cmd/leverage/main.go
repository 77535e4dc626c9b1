package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/RaynaArora/neo-hackathon/internal/cache"
	"github.com/RaynaArora/neo-hackathon/internal/config"
	"github.com/RaynaArora/neo-hackathon/internal/datasource"
	"github.com/RaynaArora/neo-hackathon/internal/health"
	"github.com/RaynaArora/neo-hackathon/internal/logger"
	"github.com/RaynaArora/neo-hackathon/internal/metrics"
	"github.com/RaynaArora/neo-hackathon/internal/scheduler"
	"github.com/RaynaArora/neo-hackathon/internal/scoring"
	"github.com/RaynaArora/neo-hackathon/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	asOfFlag   string
	appLogger  *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&asOfFlag, "as-of", "", "Score as of this date (YYYY-MM-DD, default today)")

	rankCmd.Flags().Int("limit", 0, "Number of races to return (default from config)")
	rankCmd.Flags().Int("lookahead", 0, "Maximum months until election (default from config)")
	rankCmd.Flags().Bool("include-past", false, "Include elections already held")
	rankCmd.Flags().StringP("output", "o", "", "Write the ranking as JSON to this file")

	scoreCmd.Flags().String("race-id", "", "Election metadata race ID")
	scoreCmd.MarkFlagRequired("race-id")

	rootCmd.AddCommand(rankCmd, scoreCmd, scheduleCmd, sourcesCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "leverage",
	Short: "Rank upcoming races by donation leverage",
	Long: `Fuses prediction-market, historical, demographic and campaign-finance
signals into a competitiveness x saturation score for each upcoming race.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("leverage %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score upcoming races and print the top results",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := rankOptions(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.Ranking.OutputPath
		}

		svc, sources, err := newRankingService()
		if err != nil {
			return err
		}
		defer sources.Close()

		ranking, err := svc.Rank(cmd.Context(), opts)
		if err != nil {
			return err
		}

		printRanking(os.Stdout, ranking)
		if output != "" {
			if err := service.ExportRanking(output, ranking); err != nil {
				return err
			}
			appLogger.WithField("path", output).Info("Ranking exported")
		}
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single race",
	RunE: func(cmd *cobra.Command, args []string) error {
		raceID, _ := cmd.Flags().GetString("race-id")
		asOf, err := parseAsOf()
		if err != nil {
			return err
		}

		svc, sources, err := newRankingService()
		if err != nil {
			return err
		}
		defer sources.Close()

		result, err := svc.ScoreRace(cmd.Context(), raceID, asOf)
		if err != nil {
			return err
		}
		printResult(os.Stdout, result)
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run rankings on the configured cron schedule with health and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Schedule.Cron == "" {
			return fmt.Errorf("schedule.cron is not configured")
		}

		svc, sources, err := newRankingService()
		if err != nil {
			return err
		}
		defer sources.Close()

		sched := scheduler.NewScheduler(svc, appLogger)
		if err := sched.ScheduleRanking(cfg.Schedule.Cron, scheduler.JobConfig{
			LookaheadMonths: cfg.Ranking.LookaheadMonths,
			ExcludePast:     cfg.Ranking.ExcludePast,
			Limit:           cfg.Ranking.Limit,
			OutputPath:      cfg.Ranking.OutputPath,
		}); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		metricsPath := ""
		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
			metricsPath = cfg.Metrics.Path
		}
		healthServer := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Port:        cfg.Metrics.Port,
			MetricsPath: metricsPath,
			Logger:      appLogger,
			Runs:        sched,
		})
		if err := healthServer.Start(ctx); err != nil {
			return err
		}

		if err := sched.Start(); err != nil {
			return err
		}
		healthServer.SetReady(true)
		appLogger.WithField("next_run", sched.GetNextRun()).Info("Waiting for scheduled runs")

		<-ctx.Done()
		healthServer.SetReady(false)
		return sched.Stop()
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Check reachability of each configured upstream",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := parseAsOf()
		if err != nil {
			return err
		}
		sources, err := datasource.NewFactory(cfg, appLogger).NewSources()
		if err != nil {
			return err
		}
		defer sources.Close()

		results := sources.Probe(cmd.Context(), asOf)
		printProbe(os.Stdout, results)
		for _, r := range results {
			if !r.Reachable {
				return fmt.Errorf("%s is unreachable", r.Source)
			}
		}
		return nil
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	appLogger = logger.NewLogger(cfg.App.LogLevel)
	appLogger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Debug("Configuration loaded")
	return nil
}

func newRankingService() (*service.RankingService, *datasource.Set, error) {
	sources, err := datasource.NewFactory(cfg, appLogger).NewSources()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create data sources: %w", err)
	}

	engine := scoring.NewEngine(scoring.Sources{
		Elections:   sources.Elections,
		Markets:     sources.Markets,
		Finance:     sources.Finance,
		Demographic: sources.Demographic,
	}, cache.NewRegionalCache(), appLogger)

	return service.NewRankingService(engine, sources.Elections, appLogger), sources, nil
}

func parseAsOf() (time.Time, error) {
	if asOfFlag == "" {
		return time.Now().UTC(), nil
	}
	asOf, err := time.Parse("2006-01-02", asOfFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: %w", asOfFlag, err)
	}
	return asOf, nil
}

func rankOptions(cmd *cobra.Command) (service.RankOptions, error) {
	asOf, err := parseAsOf()
	if err != nil {
		return service.RankOptions{}, err
	}

	opts := service.RankOptions{
		AsOf:            asOf,
		LookaheadMonths: cfg.Ranking.LookaheadMonths,
		ExcludePast:     cfg.Ranking.ExcludePast,
		Limit:           cfg.Ranking.Limit,
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		opts.Limit = limit
	}
	if lookahead, _ := cmd.Flags().GetInt("lookahead"); lookahead > 0 {
		opts.LookaheadMonths = lookahead
	}
	if includePast, _ := cmd.Flags().GetBool("include-past"); includePast {
		opts.ExcludePast = false
	}
	return opts, nil
}
