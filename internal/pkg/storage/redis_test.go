package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	adds   []*redis.XAddArgs
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.adds = append(f.adds, a)
	return redis.NewStringResult("1-0", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Close() error { return nil }

func testDetails(id string) models.EventDetails {
	return models.EventDetails{
		ID:        id,
		Sport:     "football",
		League:    "england-premier-league",
		HomeTeam:  "arsenal",
		AwayTeam:  "chelsea",
		StartTime: kickoff,
	}
}

func TestRedisEventDetailsRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	r := newRedisClient(fake, "", time.Hour)
	ctx := context.Background()

	if _, ok, err := r.GetEventDetails(ctx, "61300001"); ok || err != nil {
		t.Fatalf("GetEventDetails(missing) = ok %v, err %v; want not found", ok, err)
	}

	if err := r.SetEventDetails(ctx, testDetails("61300001")); err != nil {
		t.Fatalf("SetEventDetails() error = %v", err)
	}
	if _, ok := fake.values["event_details:61300001"]; !ok {
		t.Fatalf("stored keys = %v, want event_details:61300001", fake.values)
	}
	if ttl := fake.ttls["event_details:61300001"]; ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}

	got, ok, err := r.GetEventDetails(ctx, "61300001")
	if err != nil || !ok {
		t.Fatalf("GetEventDetails() = ok %v, err %v", ok, err)
	}
	if got.HomeTeam != "arsenal" || !got.StartTime.Equal(kickoff) {
		t.Errorf("GetEventDetails() = %+v", got)
	}
}

func TestRedisSkipsUnknownDetails(t *testing.T) {
	fake := newFakeRedis()
	r := newRedisClient(fake, "", 0)

	if err := r.SetEventDetails(context.Background(), models.UnknownEventDetails("404")); err != nil {
		t.Fatalf("SetEventDetails(unknown) error = %v", err)
	}
	if len(fake.values) != 0 {
		t.Errorf("stored %v, want nothing for unknown details", fake.values)
	}
	if r.detailsTTL != defaultDetailsTTL || r.stream != defaultStream {
		t.Errorf("defaults = %v, %q", r.detailsTTL, r.stream)
	}
}

func TestRedisGetEventDetailsErrors(t *testing.T) {
	fake := newFakeRedis()
	r := newRedisClient(fake, "", 0)
	ctx := context.Background()

	fake.values["event_details:bad"] = "{not json"
	if _, ok, err := r.GetEventDetails(ctx, "bad"); ok || err == nil {
		t.Errorf("GetEventDetails(corrupt) = ok %v, err %v; want error", ok, err)
	}

	fake.getErr = errors.New("connection refused")
	if _, ok, err := r.GetEventDetails(ctx, "61300001"); ok || !errors.Is(err, fake.getErr) {
		t.Errorf("GetEventDetails(down) = ok %v, err %v; want wrapped error", ok, err)
	}
}

func TestRedisPublishValueBet(t *testing.T) {
	fake := newFakeRedis()
	r := newRedisClient(fake, "alerts", 0)

	c := testCandidate()
	if err := r.PublishValueBet(context.Background(), &c); err != nil {
		t.Fatalf("PublishValueBet() error = %v", err)
	}
	if len(fake.adds) != 1 {
		t.Fatalf("XAdd calls = %d, want 1", len(fake.adds))
	}
	a := fake.adds[0]
	if a.Stream != "alerts" || a.MaxLen != streamMaxLen || !a.Approx {
		t.Errorf("XAddArgs = %+v", a)
	}
	values, ok := a.Values.(map[string]interface{})
	if !ok {
		t.Fatalf("Values type = %T", a.Values)
	}
	if values["id"] != c.ID || values["event"] != c.EventSlug() {
		t.Errorf("values = %v", values)
	}
	var decoded models.ValueBetCandidate
	if err := json.Unmarshal([]byte(values["data"].(string)), &decoded); err != nil || decoded.EdgePercent != c.EdgePercent {
		t.Errorf("data = %v, err %v", values["data"], err)
	}
}
