package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte("health:\n  addr: \":9090\"\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if c.Matcher.MatchThreshold != 65 {
		t.Errorf("MatchThreshold = %d, want 65", c.Matcher.MatchThreshold)
	}
	if c.Matcher.NormalizeThreshold != 70 {
		t.Errorf("NormalizeThreshold = %d, want 70", c.Matcher.NormalizeThreshold)
	}
	if c.Matcher.Horizon != 24*time.Hour {
		t.Errorf("Horizon = %v, want 24h", c.Matcher.Horizon)
	}
	v := c.ValueCalculator
	if v.MinValuePercent != 1.0 || v.MinBetOdds != 1.2 || v.MaxBetOdds != 3.0 {
		t.Errorf("value calculator defaults = %+v", v)
	}
	if v.Interval != 2*time.Second || v.ErrorBackoff != 5*time.Second || v.Warmup != 10*time.Second {
		t.Errorf("loop timing defaults = %v, %v, %v", v.Interval, v.ErrorBackoff, v.Warmup)
	}
	if c.Enrichment.MaxRetries != 5 || c.Enrichment.InitialDelay != time.Second {
		t.Errorf("enrichment defaults = %+v", c.Enrichment)
	}
	if c.Health.Addr != ":9090" {
		t.Errorf("Health.Addr = %q, want %q", c.Health.Addr, ":9090")
	}
	if !c.FeedEnabled("oddsapi") || !c.FeedEnabled("BoltOdds") {
		t.Errorf("default feeds = %v", c.Feeds.Enabled)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() defaults error = %v", err)
	}
}

func TestParseDurations(t *testing.T) {
	c, err := Parse([]byte(`
matcher:
  horizon: 12h
value_calculator:
  interval: 500ms
  min_value_percent: 2.5
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Matcher.Horizon != 12*time.Hour {
		t.Errorf("Horizon = %v, want 12h", c.Matcher.Horizon)
	}
	if c.ValueCalculator.Interval != 500*time.Millisecond {
		t.Errorf("Interval = %v, want 500ms", c.ValueCalculator.Interval)
	}
	if c.ValueCalculator.MinValuePercent != 2.5 {
		t.Errorf("MinValuePercent = %v, want 2.5", c.ValueCalculator.MinValuePercent)
	}
}

func TestParseKeepsExplicitZero(t *testing.T) {
	c, err := Parse([]byte(`
matcher:
  match_threshold: 0
value_calculator:
  min_value_percent: 0
  min_lead:
    tennis: 30m
    darts: 0s
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Matcher.MatchThreshold != 0 {
		t.Errorf("MatchThreshold = %d, want 0", c.Matcher.MatchThreshold)
	}
	if c.Matcher.NormalizeThreshold != 70 {
		t.Errorf("NormalizeThreshold = %d, want default 70", c.Matcher.NormalizeThreshold)
	}
	v := c.ValueCalculator
	if v.MinValuePercent != 0 {
		t.Errorf("MinValuePercent = %v, want 0", v.MinValuePercent)
	}
	if v.MinBetOdds != 1.2 || v.MaxBetOdds != 3.0 {
		t.Errorf("odds window = [%v, %v], want defaults", v.MinBetOdds, v.MaxBetOdds)
	}
	if v.MinLead["tennis"] != 30*time.Minute || len(v.MinLead) != 2 {
		t.Errorf("MinLead = %v", v.MinLead)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidateRejectsExplicitZeroOdds(t *testing.T) {
	c, err := Parse([]byte("value_calculator:\n  min_bet_odds: 0\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := c.Validate(); err == nil {
		t.Error("Validate() error = nil for min_bet_odds 0")
	}
}

func TestApplyEnv(t *testing.T) {
	c, _ := Parse(nil)
	env := map[string]string{
		"ODDS_API_KEY":     "odds-key",
		"BOLTODDS_API_KEY": "bolt-key",
		"KAFKA_BROKERS":    "k1:9092, k2:9092,",
		"TELEGRAM_CHAT_ID": "-100123",
	}
	c.ApplyEnv(func(k string) string { return env[k] })

	if c.Feeds.OddsAPI.APIKey != "odds-key" || c.Feeds.BoltOdds.APIKey != "bolt-key" {
		t.Errorf("api keys = %q, %q", c.Feeds.OddsAPI.APIKey, c.Feeds.BoltOdds.APIKey)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", c.Kafka.Brokers)
	}
	if c.Telegram.ChatID != -100123 {
		t.Errorf("Telegram.ChatID = %d, want -100123", c.Telegram.ChatID)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above 100", func(c *Config) { c.Matcher.MatchThreshold = 101 }},
		{"inverted odds window", func(c *Config) { c.ValueCalculator.MinBetOdds, c.ValueCalculator.MaxBetOdds = 3, 2 }},
		{"negative interval", func(c *Config) { c.ValueCalculator.Interval = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := Parse(nil)
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() error = nil, want error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("matcher:\n  match_threshold: 80\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ODDS_API_KEY", "from-env")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Matcher.MatchThreshold != 80 {
		t.Errorf("MatchThreshold = %d, want 80", c.Matcher.MatchThreshold)
	}
	if c.Feeds.OddsAPI.APIKey != "from-env" {
		t.Errorf("OddsAPI.APIKey = %q, want from-env", c.Feeds.OddsAPI.APIKey)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil, want error")
	}
}
