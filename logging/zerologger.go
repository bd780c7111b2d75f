package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field keys shared by every package, so one table's lines can be filtered
// out of the combined log.
const (
	TableIDKey  string = "tableID"
	PlayerIDKey string = "playerID"
	StageKey    string = "stage"
	ActionKey   string = "action"
	VersionKey  string = "version"
	SubjectKey  string = "subject"
)

const (
	colorEnv  = "COLORIZE_LOG"
	formatEnv = "LOG_FORMAT"
)

// IsColorLoggingEnabled is true unless COLORIZE_LOG is set to something
// other than 1 or true.
func IsColorLoggingEnabled() bool {
	switch strings.ToLower(os.Getenv(colorEnv)) {
	case "", "1", "true":
		return true
	}
	return false
}

// IsJSONLogging is true when LOG_FORMAT=json. JSON lines bypass the console
// writer and are never colored.
func IsJSONLogging() bool {
	return strings.EqualFold(os.Getenv(formatEnv), "json")
}

func writerFor(out io.Writer) io.Writer {
	if IsJSONLogging() {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, NoColor: !IsColorLoggingEnabled(), TimeFormat: time.RFC3339}
}

// GetZeroLogger returns a logger tagged with name. A nil out means stdout.
func GetZeroLogger(name string, out io.Writer) *zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := zerolog.New(writerFor(out)).With().Timestamp().Str("logger", name).Logger()
	return &logger
}

// ForTable derives a logger that stamps every line with the table and, when
// given, the player.
func ForTable(parent *zerolog.Logger, tableID string, playerID string) *zerolog.Logger {
	ctx := parent.With().Str(TableIDKey, tableID)
	if playerID != "" {
		ctx = ctx.Str(PlayerIDKey, playerID)
	}
	logger := ctx.Logger()
	return &logger
}
