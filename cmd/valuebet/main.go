package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Samstix636/duel-value-betting-bot/internal/calculator/calculator"
	"github.com/Samstix636/duel-value-betting-bot/internal/parser/parsers"
	_ "github.com/Samstix636/duel-value-betting-bot/internal/parser/parsers/all"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/config"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/health"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/health/handlers"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/logging"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/oddsmath"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/parserutil"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/slug"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/storage"
)

const (
	defaultConfigPath = "configs/production.yaml"
	serviceName       = "valuebet"

	targetFeed    = "oddsapi"
	referenceFeed = "boltodds"
)

func main() {
	var configPath string
	var healthAddr string

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&healthAddr, "health-addr", "", "Health server listen address, overrides health.addr (e.g. :8080)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if healthAddr != "" {
		cfg.Health.Addr = healthAddr
	}

	logger, logCloser, err := logging.SetupLogger(&cfg.Logging, serviceName)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	slog.Info("Config loaded", "path", configPath, "feeds", cfg.Feeds.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()

	if err != nil {
		slog.Error("Service stopped with error", "error", err)
	} else {
		slog.Info("Service stopped")
	}
	logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	targetStore := storage.NewQuoteStore(targetFeed)
	referenceStore := storage.NewQuoteStore(referenceFeed)

	similarity, err := slug.SimilarityByName(cfg.Matcher.Similarity)
	if err != nil {
		return fmt.Errorf("invalid matcher.similarity: %w", err)
	}
	normalizer := slug.NewNormalizer(
		slug.WithThreshold(cfg.Matcher.NormalizeThreshold),
		slug.WithSimilarity(similarity),
	)
	mapper := calculator.NewMarketMapper(nil)

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				slog.Warn("Close failed", "error", err)
			}
		}
	}()

	recent := calculator.NewRecentSink(cfg.ValueCalculator.RecentLimit)
	sink := calculator.NewMultiSink(logger, calculator.NewLogSink(logger), recent)
	recentValueBets := func(_ context.Context, limit int) ([]models.ValueBetCandidate, error) {
		return recent.Recent(), nil
	}

	if cfg.Postgres.DSN != "" {
		pg, err := storage.NewPostgresValueBetStorage(&cfg.Postgres)
		if err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL storage: %w", err)
		}
		closers = append(closers, pg)
		sink.Add(calculator.NewStorageSink(pg))
		recentValueBets = pg.GetRecentValueBets
		slog.Info("PostgreSQL value bet storage initialized")
	}

	var details storage.EventDetailsCache
	if cfg.Redis.Addr != "" {
		rc, err := storage.NewRedisClient(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		closers = append(closers, rc)
		details = rc
		sink.Add(calculator.NewPublisherSink("redis", rc))
		slog.Info("Redis stream and details cache initialized", "addr", cfg.Redis.Addr, "stream", cfg.Redis.Stream)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := storage.NewKafkaPublisher(&cfg.Kafka)
		if err != nil {
			return fmt.Errorf("failed to initialize Kafka publisher: %w", err)
		}
		closers = append(closers, kp)
		sink.Add(calculator.NewPublisherSink("kafka", kp))
		slog.Info("Kafka publisher initialized", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	var notifier *calculator.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		n, err := calculator.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			// Alerts are optional; keep running without them.
			slog.Error("Failed to initialize Telegram notifier", "error", err)
		} else {
			notifier = n
			defer notifier.Stop()
			sink.Add(notifier)
		}
	}
	slog.Info("Value bet sinks configured", "sinks", sink.Names())

	var queueLengths func() map[string]int
	if notifier != nil {
		queueLengths = func() map[string]int {
			return map[string]int{notifier.Name(): notifier.QueueLen()}
		}
		if err := notifier.SendText(ctx, "Value bet service started"); err != nil {
			slog.Warn("Failed to queue Telegram startup message", "error", err)
		}
	}

	deps := parsers.Deps{
		Normalizer: normalizer,
		Details:    details,
		Markets:    mapper,
		Logger:     logger,
	}
	var feeds []parsers.Parser
	for name, store := range map[string]*storage.QuoteStore{targetFeed: targetStore, referenceFeed: referenceStore} {
		if !cfg.FeedEnabled(name) {
			slog.Warn("Feed disabled", "feed", name)
			continue
		}
		d := deps
		d.Store = store
		p, err := parsers.Build(name, cfg, d)
		if err != nil {
			return err
		}
		feeds = append(feeds, p)
	}

	matcher := calculator.NewEventMatcher(
		calculator.WithMatchThreshold(cfg.Matcher.MatchThreshold),
		calculator.WithHorizon(cfg.Matcher.Horizon),
		calculator.WithNormalizer(normalizer),
		calculator.WithSimilarity(similarity),
		calculator.WithMatcherLogger(logger),
	)
	var valueOpts []calculator.ValueOption
	if len(cfg.ValueCalculator.MinLead) > 0 {
		valueOpts = append(valueOpts, calculator.WithMinLead(cfg.ValueCalculator.MinLead))
	}
	values := calculator.NewValueCalculator(cfg.ValueCalculator.MinValuePercent, valueOpts...)
	loop := calculator.NewCorrelationLoop(targetStore, referenceStore, matcher, mapper, values, sink,
		calculator.LoopConfig{
			Interval:     cfg.ValueCalculator.Interval,
			ErrorBackoff: cfg.ValueCalculator.ErrorBackoff,
			Warmup:       cfg.ValueCalculator.Warmup,
		},
		calculator.WithLoopLogger(logger),
	)

	slog.Info("Starting value bet service",
		"match_threshold", cfg.Matcher.MatchThreshold,
		"min_value_percent", values.MinValuePercent(),
		"odds_window", oddsmath.Window{Min: cfg.ValueCalculator.MinBetOdds, Max: cfg.ValueCalculator.MaxBetOdds},
		"interval", cfg.ValueCalculator.Interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return parserutil.RunParsers(gctx, feeds, parserutil.RunOptions{LogStart: true})
	})
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		return health.Run(gctx, cfg.Health.Addr, serviceName, handlers.Providers{
			Stats: func() any { return loop.Stats() },
			StoreSizes: func() map[string]int {
				return map[string]int{targetStore.Source(): targetStore.Len(), referenceStore.Source(): referenceStore.Len()}
			},
			QueueLengths:    queueLengths,
			RecentValueBets: recentValueBets,
		}, 5*time.Second)
	})
	return g.Wait()
}
