package annoy

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestApplyLogLevel(t *testing.T) {
	old := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(old)

	cases := []struct {
		value string
		want  zerolog.Level
	}{
		{"off", zerolog.Disabled},
		{"0", zerolog.Disabled},
		{" FALSE ", zerolog.Disabled},
		{"debug", zerolog.DebugLevel},
		{"full", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		applyLogLevel(tc.value)
		assert.Equal(t, tc.want, zerolog.GlobalLevel(), "GOANNOY_LOG=%q", tc.value)
	}
}

func TestDefaultSeedFromEnv(t *testing.T) {
	t.Setenv("GOANNOY_SEED", "12345")

	assert.Equal(t, int64(12345), defaultSeed())
}

func TestDefaultSeedUnparseable(t *testing.T) {
	t.Setenv("GOANNOY_SEED", "not-a-number")

	assert.NotZero(t, defaultSeed(), "a bad value falls back to the clock")
}

func TestDefaultSeedFromClock(t *testing.T) {
	t.Setenv("GOANNOY_SEED", "")

	seed1 := defaultSeed()
	time.Sleep(time.Nanosecond)
	seed2 := defaultSeed()
	assert.NotEqual(t, seed1, seed2, "clock seeds differ between calls")
}
