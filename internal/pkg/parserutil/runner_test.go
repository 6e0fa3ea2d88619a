package parserutil

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/parser/parsers"
)

type fakeParser struct {
	name    string
	err     error
	started atomic.Bool
	stopped atomic.Bool
}

func (f *fakeParser) Start(ctx context.Context) error {
	f.started.Store(true)
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return nil
}

func (f *fakeParser) Stop() error {
	f.stopped.Store(true)
	return nil
}

func (f *fakeParser) GetName() string { return f.name }

func TestRunParsers(t *testing.T) {
	ok := &fakeParser{name: "ok"}
	bad := &fakeParser{name: "bad", err: errors.New("dial failed")}

	var failed atomic.Value
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := RunParsers(ctx, []parsers.Parser{ok, bad}, RunOptions{
		OnError: func(p parsers.Parser, err error) { failed.Store(p.GetName()) },
	})
	if err != nil {
		t.Fatalf("RunParsers() error = %v", err)
	}
	if !ok.started.Load() || !ok.stopped.Load() || !bad.stopped.Load() {
		t.Error("parsers were not started and stopped")
	}
	if got, _ := failed.Load().(string); got != "bad" {
		t.Errorf("OnError parser = %q, want bad", got)
	}
}
