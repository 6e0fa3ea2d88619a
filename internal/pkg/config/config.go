package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging         LoggingConfig         `yaml:"logging"`
	Feeds           FeedsConfig           `yaml:"feeds"`
	Matcher         MatcherConfig         `yaml:"matcher"`
	ValueCalculator ValueCalculatorConfig `yaml:"value_calculator"`
	Enrichment      EnrichmentConfig      `yaml:"enrichment"`
	Postgres        PostgresConfig        `yaml:"postgres"`
	Redis           RedisConfig           `yaml:"redis"`
	Kafka           KafkaConfig           `yaml:"kafka"`
	Telegram        TelegramConfig        `yaml:"telegram"`
	Health          HealthConfig          `yaml:"health"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional JSON log file
}

type FeedsConfig struct {
	Enabled  []string       `yaml:"enabled"`
	OddsAPI  OddsAPIConfig  `yaml:"oddsapi"`
	BoltOdds BoltOddsConfig `yaml:"boltodds"`
}

// OddsAPIConfig configures the target feed.
type OddsAPIConfig struct {
	APIKey          string        `yaml:"api_key"`
	WSURL           string        `yaml:"ws_url"`
	APIURL          string        `yaml:"api_url"`
	Bookmakers      []string      `yaml:"bookmakers"`
	Sports          []string      `yaml:"sports"`
	Markets         []string      `yaml:"markets"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// BoltOddsConfig configures the reference feed.
type BoltOddsConfig struct {
	APIKey      string   `yaml:"api_key"`
	WSURL       string   `yaml:"ws_url"`
	Sportsbooks []string `yaml:"sportsbooks"`
	Markets     []string `yaml:"markets"`
}

type MatcherConfig struct {
	MatchThreshold     int           `yaml:"match_threshold"`     // 0-100, both teams must reach it
	NormalizeThreshold int           `yaml:"normalize_threshold"` // 0-100, dictionary fuzzy fallback
	Horizon            time.Duration `yaml:"horizon"`             // only events starting within this window match
	Similarity         string        `yaml:"similarity"`          // token_sort (default) or levenshtein
}

type ValueCalculatorConfig struct {
	MinValuePercent float64       `yaml:"min_value_percent"`
	MinBetOdds      float64       `yaml:"min_bet_odds"`
	MaxBetOdds      float64       `yaml:"max_bet_odds"`
	Interval        time.Duration `yaml:"interval"`
	ErrorBackoff    time.Duration `yaml:"error_backoff"`
	Warmup          time.Duration `yaml:"warmup"`
	RecentLimit     int           `yaml:"recent_limit"` // value bets kept for /value-bets

	// MinLead is the minimum time before kickoff per sport slug; empty uses the built-in table.
	MinLead map[string]time.Duration `yaml:"min_lead"`
}

type EnrichmentConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Timeout      time.Duration `yaml:"timeout"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	Stream     string        `yaml:"stream"`
	DetailsTTL time.Duration `yaml:"details_ttl"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type HealthConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the YAML file at configPath, fills defaults and applies env overrides.
// A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(os.Getenv)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Parse decodes YAML and applies defaults. It does not read the environment.
// Thresholds and odds bounds are preset before decoding, so an explicit zero
// in the file is kept rather than replaced.
func Parse(data []byte) (*Config, error) {
	config := Config{
		Matcher: MatcherConfig{
			MatchThreshold:     65,
			NormalizeThreshold: 70,
		},
		ValueCalculator: ValueCalculatorConfig{
			MinValuePercent: 1.0,
			MinBetOdds:      1.2,
			MaxBetOdds:      3.0,
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.ApplyDefaults()
	return &config, nil
}

// ApplyDefaults fills unset fields with their defaults. Fields where zero is a
// meaningful value (thresholds, odds bounds) are preset by Parse instead.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if len(c.Feeds.Enabled) == 0 {
		c.Feeds.Enabled = []string{"oddsapi", "boltodds"}
	}

	o := &c.Feeds.OddsAPI
	if o.WSURL == "" {
		o.WSURL = "wss://api.odds-api.io/v3/ws"
	}
	if o.APIURL == "" {
		o.APIURL = "https://api.odds-api.io/v3"
	}
	if len(o.Bookmakers) == 0 {
		o.Bookmakers = []string{"Duel"}
	}
	if len(o.Sports) == 0 {
		o.Sports = []string{"football", "basketball", "handball", "volleyball", "tennis", "ice-hockey", "american-football"}
	}
	if len(o.Markets) == 0 {
		o.Markets = []string{
			"Spread", "ML", "Totals", "Totals HT", "Asian Handicap", "Asian Handicap HT",
			"Team Total home", "Team Total away", "Team Total home HT", "Team Total away HT",
			"ML HT", "Spread HT", "Totals (Games)", "Spread (Games)",
		}
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = 2 * time.Hour
	}

	b := &c.Feeds.BoltOdds
	if b.WSURL == "" {
		b.WSURL = "wss://spro.agency/api"
	}
	if len(b.Sportsbooks) == 0 {
		b.Sportsbooks = []string{"pinnacle"}
	}
	if len(b.Markets) == 0 {
		b.Markets = []string{
			"Moneyline", "Spread", "1st Half Spread", "1st Half Moneyline",
			"Total Goals", "1st Half Asian Spread", "1st Half Total Goals",
			"3 Way", "Asian Spread", "Total", "1st Half Total",
			"1st Half Total Points", "Total Points",
		}
	}

	if c.Matcher.Horizon <= 0 {
		c.Matcher.Horizon = 24 * time.Hour
	}

	v := &c.ValueCalculator
	if v.Interval == 0 {
		v.Interval = 2 * time.Second
	}
	if v.ErrorBackoff == 0 {
		v.ErrorBackoff = 5 * time.Second
	}
	if v.Warmup == 0 {
		v.Warmup = 10 * time.Second
	}
	if v.RecentLimit <= 0 {
		v.RecentLimit = 100
	}

	e := &c.Enrichment
	if e.MaxRetries <= 0 {
		e.MaxRetries = 5
	}
	if e.InitialDelay <= 0 {
		e.InitialDelay = time.Second
	}
	if e.MaxDelay <= 0 {
		e.MaxDelay = 60 * time.Second
	}
	if e.Timeout <= 0 {
		e.Timeout = 5 * time.Second
	}

	if c.Redis.Stream == "" {
		c.Redis.Stream = "valuebets"
	}
	if c.Redis.DetailsTTL <= 0 {
		c.Redis.DetailsTTL = 6 * time.Hour
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "valuebets.candidates"
	}
	if c.Health.Addr == "" {
		c.Health.Addr = ":8080"
	}
}

// ApplyEnv overrides secrets and endpoints from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("ODDS_API_KEY"); v != "" {
		c.Feeds.OddsAPI.APIKey = v
	}
	if v := getenv("BOLTODDS_API_KEY"); v != "" {
		c.Feeds.BoltOdds.APIKey = v
	}
	if v := getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if t := c.Matcher.MatchThreshold; t < 0 || t > 100 {
		errs = append(errs, fmt.Errorf("matcher.match_threshold %d outside [0,100]", t))
	}
	if t := c.Matcher.NormalizeThreshold; t < 0 || t > 100 {
		errs = append(errs, fmt.Errorf("matcher.normalize_threshold %d outside [0,100]", t))
	}
	v := c.ValueCalculator
	if v.MinBetOdds <= 1 || v.MaxBetOdds < v.MinBetOdds {
		errs = append(errs, fmt.Errorf("value_calculator odds window [%v, %v] is invalid", v.MinBetOdds, v.MaxBetOdds))
	}
	if v.Interval <= 0 || v.ErrorBackoff <= 0 {
		errs = append(errs, fmt.Errorf("value_calculator interval and error_backoff must be positive"))
	}
	if v.Warmup < 0 {
		errs = append(errs, fmt.Errorf("value_calculator.warmup must not be negative"))
	}
	for sport, lead := range v.MinLead {
		if lead < 0 {
			errs = append(errs, fmt.Errorf("value_calculator.min_lead[%s] must not be negative", sport))
		}
	}
	if c.Enrichment.MaxDelay < c.Enrichment.InitialDelay {
		errs = append(errs, fmt.Errorf("enrichment.max_delay below initial_delay"))
	}
	return errors.Join(errs...)
}

// FeedEnabled reports whether the named feed should be started.
func (c *Config) FeedEnabled(name string) bool {
	for _, n := range c.Feeds.Enabled {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
