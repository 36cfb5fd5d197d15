package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type config struct {
	ListenAddr string `mapstructure:"LISTEN_ADDR" validate:"required"`
	LogLevel   string `mapstructure:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat  string `mapstructure:"LOG_FORMAT" validate:"oneof=json text"`

	MongoURL      string        `mapstructure:"MONGO_URL" validate:"required"`
	MongoUser     string        `mapstructure:"MONGO_USER" validate:"required"`
	MongoPassword string        `mapstructure:"MONGO_PASSWORD" validate:"required"`
	MongoDB       string        `mapstructure:"MONGO_DB" validate:"required"`
	StoreTimeout  time.Duration `mapstructure:"STORE_TIMEOUT" validate:"gt=0"`
	// StoreConcurrencyMax limita idas simultâneas ao Mongo; 0 desliga.
	StoreConcurrencyMax int `mapstructure:"STORE_CONCURRENCY_MAX" validate:"gte=0"`

	RateEnabled         bool          `mapstructure:"RATE_ENABLED"`
	RateRPS             float64       `mapstructure:"RATE_RPS" validate:"gt=0"`
	RateBurst           int           `mapstructure:"RATE_BURST" validate:"gt=0"`
	RateGlobal          bool          `mapstructure:"RATE_GLOBAL"`
	RateKeyHeader       string        `mapstructure:"RATE_KEY_HEADER"`
	TrustXFF            bool          `mapstructure:"TRUST_XFF"`
	RetryAfter          time.Duration `mapstructure:"RETRY_AFTER" validate:"gte=0"`
	AddRateLimitHeaders bool          `mapstructure:"ADD_RATELIMIT_HEADERS"`
	ConcurrencyMax      int           `mapstructure:"CONCURRENCY_MAX" validate:"gte=0"`
	ConcurrencyTimeout  time.Duration `mapstructure:"CONCURRENCY_TIMEOUT" validate:"gte=0"`
	MetricsEnabled      bool          `mapstructure:"METRICS_ENABLED"`

	RateStatsEnabled       bool          `mapstructure:"RATE_STATS_ENABLED"`
	RateStatsRedisAddr     string        `mapstructure:"RATE_STATS_REDIS_ADDR" validate:"required_if=RateStatsEnabled true"`
	RateStatsRedisPassword string        `mapstructure:"RATE_STATS_REDIS_PASSWORD"`
	RateStatsRedisDB       int           `mapstructure:"RATE_STATS_REDIS_DB" validate:"gte=0"`
	RateStatsPrefix        string        `mapstructure:"RATE_STATS_PREFIX"`
	RateStatsTTL           time.Duration `mapstructure:"RATE_STATS_TTL" validate:"gte=0"`
	RateStatsBucket        string        `mapstructure:"RATE_STATS_BUCKET" validate:"oneof=minute none"`
	RateStatsTrackKeys     bool          `mapstructure:"RATE_STATS_TRACK_KEYS"`
}

var defaults = map[string]any{
	"LISTEN_ADDR": "0.0.0.0:8080",
	"LOG_LEVEL":   "info",
	"LOG_FORMAT":  "json",

	"MONGO_URL":      "",
	"MONGO_USER":     "",
	"MONGO_PASSWORD": "",
	"MONGO_DB":       "DEV",
	"STORE_TIMEOUT":  "5s",

	"STORE_CONCURRENCY_MAX": 32,

	// 10 req/s com burst 10. A outra configuração usada em produção é 1/2.
	"RATE_ENABLED":          true,
	"RATE_RPS":              10.0,
	"RATE_BURST":            10,
	"RATE_GLOBAL":           false,
	"RATE_KEY_HEADER":       "",
	"TRUST_XFF":             false,
	"RETRY_AFTER":           "0s",
	"ADD_RATELIMIT_HEADERS": false,
	"CONCURRENCY_MAX":       100,
	"CONCURRENCY_TIMEOUT":   "0s",
	"METRICS_ENABLED":       true,

	"RATE_STATS_ENABLED":        false,
	"RATE_STATS_REDIS_ADDR":     "",
	"RATE_STATS_REDIS_PASSWORD": "",
	"RATE_STATS_REDIS_DB":       0,
	"RATE_STATS_PREFIX":         "ratelimit:stats",
	"RATE_STATS_TTL":            "24h",
	"RATE_STATS_BUCKET":         "minute",
	"RATE_STATS_TRACK_KEYS":     false,
}

// loadConfig lê envFile (se existir; variáveis já definidas no ambiente prevalecem)
// e depois o ambiente. Qualquer erro aqui deve abortar o processo.
func loadConfig(envFile string) (config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode env: %w", err)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.RateStatsBucket = strings.ToLower(strings.TrimSpace(cfg.RateStatsBucket))

	if err := newConfigValidator().Struct(cfg); err != nil {
		return config{}, describeValidation(err)
	}
	return cfg, nil
}

func newConfigValidator() *validator.Validate {
	validate := validator.New()
	// erros citam o nome da variável de ambiente, não o campo Go
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	return validate
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fe.Field()+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
