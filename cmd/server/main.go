package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/austrian-olympiad-informatics/aoi-portal/conf"
	scoreshttp "github.com/austrian-olympiad-informatics/aoi-portal/http"
	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorecache"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorenotify"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorepgrepo"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var configPath string
	var demo bool

	rootCmd := &cobra.Command{
		Use:          "aoi-scores",
		Short:        "Serves contest standings computed from the CMS mirror database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, demo)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "serve a built-in demo contest instead of postgres")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, demo bool) error {
	cfg, err := conf.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	log.Info("loaded config", "config", cfg)

	var repo scoresrvc.Repo
	if demo {
		log.Warn("serving the built-in demo contest", "contest_id", scoresrvc.DemoContestID)
		repo = scoresrvc.NewDemoRepo()
	} else {
		connStr, err := cfg.Postgres.PgConnStr(ctx, cfg.AwsRegion)
		if err != nil {
			return err
		}
		pool, err := scorepgrepo.Connect(ctx, connStr)
		if err != nil {
			return err
		}
		defer pool.Close()
		repo = scorepgrepo.NewPgScoreRepo(pool)
	}

	scoreSrvc := scoresrvc.NewScoreSrvc(repo, scorecache.New(cfg.Scores.CacheMaxAge.Duration))

	listener, closeListener, err := newListener(ctx, cfg, scoreSrvc, log)
	if err != nil {
		return err
	}
	defer closeListener()
	if listener != nil {
		go func() {
			// standings stay correct without notifications, only staler
			if err := listener.Start(ctx); err != nil {
				log.Error("notification listener stopped", "error", err)
			}
		}()
	}

	if cfg.Http.JwtKey == "" {
		log.Warn("no jwt key configured, participation invalidation over http is disabled")
	}

	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(cfg.Log.Level))
	server := scoreshttp.NewHttpServer(scoreSrvc, scoreshttp.Options{
		AllowedOrigins: cfg.Http.AllowedOrigins,
		LogLevel:       lvl,
		LogJson:        cfg.Log.Format == "json",
		Version:        version,
		JwtKey:         []byte(cfg.Http.JwtKey),
	})
	return server.Start(ctx, cfg.Http.Addr)
}

type listener interface {
	Start(ctx context.Context) error
}

func newListener(ctx context.Context, cfg conf.Config, inv scorenotify.Invalidator, log *slog.Logger) (listener, func(), error) {
	switch cfg.Notify.Source {
	case conf.NotifySqs:
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AwsRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := sqs.NewFromConfig(awsCfg)
		return scorenotify.NewSqsListener(client, cfg.Notify.SqsQueueUrl, inv, log), func() {}, nil
	case conf.NotifyAmqp:
		conn, ch, err := scorenotify.DialAmqp(cfg.Notify.AmqpUrl)
		if err != nil {
			return nil, nil, err
		}
		closeConn := func() {
			if err := conn.Close(); err != nil {
				log.Warn("failed to close rabbitmq connection", "error", err)
			}
		}
		return scorenotify.NewAmqpListener(ch, cfg.Notify.AmqpQueue, inv, log), closeConn, nil
	default:
		return nil, func() {}, nil
	}
}
