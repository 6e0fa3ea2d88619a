package parsers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/config"
)

type Factory func(cfg *config.Config, deps Deps) (Parser, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("parsers: empty name in Register")
	}
	if f == nil {
		panic("parsers: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("parsers: duplicate registration for " + n)
	}
	registry[n] = f
}

func FactoryByName(name string) (Factory, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[n]
	return f, ok
}

func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build creates the named parser.
func Build(name string, cfg *config.Config, deps Deps) (Parser, error) {
	f, ok := FactoryByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown parser %q (available: %v)", name, AvailableNames())
	}
	p, err := f(cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser %s: %w", name, err)
	}
	return p, nil
}
