package annoy

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logConfigOnce sync.Once

// configureLogging applies GOANNOY_LOG once per process, the first time an
// index is created. "off" silences the library; "debug" enables per-tree
// build tracing on a console writer; anything else stays at info.
func configureLogging() {
	logConfigOnce.Do(func() {
		applyLogLevel(os.Getenv("GOANNOY_LOG"))
	})
}

func applyLogLevel(value string) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "0", "off", "false":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "debug", "full", "all":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// defaultSeed picks the build seed for a fresh index: GOANNOY_SEED when set
// and parseable, the wall clock otherwise. SetSeed overrides it per index.
func defaultSeed() int64 {
	if raw := os.Getenv("GOANNOY_SEED"); raw != "" {
		if seed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			log.Debug().Int64("seed", seed).Msg("seeding builds from GOANNOY_SEED")
			return seed
		}
		log.Warn().Str("value", raw).Msg("ignoring unparseable GOANNOY_SEED")
	}
	return time.Now().UnixNano()
}
