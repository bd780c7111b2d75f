package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type environment struct {
	PersistMethod   string
	RedisHost       string
	RedisPort       string
	RedisPW         string
	RedisDB         string
	PostgresHost    string
	PostgresPort    string
	PostgresUser    string
	PostgresPW      string
	PostgresDB      string
	PostgresSSLMode string
	NatsURL         string
	ScoringMethod   string
	ScoringURL      string
	ScoringFormat   string
	RestPort        string
	TableConfigFile string
	LogLevel        string
	ScriptTestsDir  string
}

// Env is a helper object for accessing environment variables.
var Env = &environment{
	PersistMethod:   "PERSIST_METHOD",
	RedisHost:       "REDIS_HOST",
	RedisPort:       "REDIS_PORT",
	RedisPW:         "REDIS_PW",
	RedisDB:         "REDIS_DB",
	PostgresHost:    "POSTGRES_HOST",
	PostgresPort:    "POSTGRES_PORT",
	PostgresUser:    "POSTGRES_USER",
	PostgresPW:      "POSTGRES_PASSWORD",
	PostgresDB:      "POSTGRES_DB",
	PostgresSSLMode: "POSTGRES_SSL_MODE",
	NatsURL:         "NATS_URL",
	ScoringMethod:   "SCORING_METHOD",
	ScoringURL:      "SCORING_URL",
	ScoringFormat:   "SCORING_CARD_FORMAT",
	RestPort:        "REST_PORT",
	TableConfigFile: "TABLE_CONFIG",
	LogLevel:        "LOG_LEVEL",
	ScriptTestsDir:  "SCRIPT_TESTS_DIR",
}

func (e *environment) mustGet(name string) string {
	v := os.Getenv(name)
	if v == "" {
		msg := fmt.Sprintf("%s is not defined", name)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return v
}

func (e *environment) mustGetInt(name string) int {
	s := e.mustGet(name)
	n, err := strconv.Atoi(s)
	if err != nil {
		msg := fmt.Sprintf("Invalid integer [%s] for %s", s, name)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return n
}

// GetPersistMethod returns memory, redis or postgres. Defaults to memory.
func (e *environment) GetPersistMethod() string {
	method := os.Getenv(e.PersistMethod)
	if method == "" {
		return "memory"
	}
	return strings.ToLower(method)
}

func (e *environment) GetRedisHost() string {
	return e.mustGet(e.RedisHost)
}

func (e *environment) GetRedisPort() int {
	return e.mustGetInt(e.RedisPort)
}

func (e *environment) GetRedisPW() string {
	return os.Getenv(e.RedisPW)
}

func (e *environment) GetRedisDB() int {
	if os.Getenv(e.RedisDB) == "" {
		return 0
	}
	return e.mustGetInt(e.RedisDB)
}

func (e *environment) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", e.GetRedisHost(), e.GetRedisPort())
}

func (e *environment) GetPostgresHost() string {
	return e.mustGet(e.PostgresHost)
}

func (e *environment) GetPostgresPort() int {
	return e.mustGetInt(e.PostgresPort)
}

func (e *environment) GetPostgresUser() string {
	return e.mustGet(e.PostgresUser)
}

func (e *environment) GetPostgresPW() string {
	return e.mustGet(e.PostgresPW)
}

func (e *environment) GetPostgresDB() string {
	return e.mustGet(e.PostgresDB)
}

func (e *environment) GetPostgresSSLMode() string {
	v := os.Getenv(e.PostgresSSLMode)
	if v == "" {
		return "disable"
	}
	return v
}

func (e *environment) GetPostgresConnStr() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		e.GetPostgresHost(),
		e.GetPostgresPort(),
		e.GetPostgresUser(),
		e.GetPostgresPW(),
		e.GetPostgresDB(),
		e.GetPostgresSSLMode(),
	)
}

// GetNatsURL returns an empty string when table changes should not be
// published to NATS.
func (e *environment) GetNatsURL() string {
	return os.Getenv(e.NatsURL)
}

// GetScoringMethod returns http or local. Defaults to local.
func (e *environment) GetScoringMethod() string {
	v := os.Getenv(e.ScoringMethod)
	if v == "" {
		return "local"
	}
	return strings.ToLower(v)
}

func (e *environment) GetScoringURL() string {
	v := os.Getenv(e.ScoringURL)
	if v == "" {
		return "http://www.pokerbrain.net:88/hand/score"
	}
	return v
}

// GetScoringCardFormat returns numeric or token. Empty means numeric.
func (e *environment) GetScoringCardFormat() string {
	return os.Getenv(e.ScoringFormat)
}

func (e *environment) GetRestPort() int {
	if os.Getenv(e.RestPort) == "" {
		return 8080
	}
	return e.mustGetInt(e.RestPort)
}

func (e *environment) GetTableConfigFile() string {
	v := os.Getenv(e.TableConfigFile)
	if v == "" {
		return "table.yaml"
	}
	return v
}

func (e *environment) GetScriptTestsDir() string {
	v := os.Getenv(e.ScriptTestsDir)
	if v == "" {
		return "test/table-scripts"
	}
	return v
}

func (e *environment) GetLogLevel() string {
	v := os.Getenv(e.LogLevel)
	if v == "" {
		defaultVal := "info"
		environmentLogger.Warn().Msgf("%s is not defined. Using default %s", e.LogLevel, defaultVal)
		return defaultVal
	}
	return v
}

func (e *environment) GetZeroLogLogLevel() zerolog.Level {
	l := e.GetLogLevel()
	switch strings.ToLower(l) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		fallthrough
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		panic(fmt.Sprintf("Unsupported %s: %s", e.LogLevel, l))
	}
}
