package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupWithWriter(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARNING", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			SetupWithWriter(tt.level, false, &bytes.Buffer{})
			if got := zerolog.GlobalLevel(); got != tt.want {
				t.Errorf("GlobalLevel() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		SetupWithWriter("info", false, &buf)

		log.Info().Str("ticker", "AAPL").Msg("hello")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
		}
		if entry["ticker"] != "AAPL" || entry["message"] != "hello" || entry["level"] != "info" {
			t.Errorf("entry = %v", entry)
		}
	})

	t.Run("filtered below level", func(t *testing.T) {
		var buf bytes.Buffer
		SetupWithWriter("error", false, &buf)

		log.Warn().Msg("quiet")
		if buf.Len() != 0 {
			t.Errorf("warn written at error level: %q", buf.String())
		}
	})
}
