// Package all imports all available parsers for side-effect registration.
//
// Import this package from your main to ensure all parsers are registered:
//
//	import _ "github.com/Samstix636/duel-value-betting-bot/internal/parser/parsers/all"
package all

import (
	_ "github.com/Samstix636/duel-value-betting-bot/internal/parser/parsers/boltodds"
	_ "github.com/Samstix636/duel-value-betting-bot/internal/parser/parsers/oddsapi"
)
