package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables,
// an optional .env file and an optional config.yaml.
type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	DBDriver    string
	DatabaseDSN string
	ResetDB     bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret   string
	SwaggerHost string

	UploadDir       string
	UploadURLPrefix string
	MaxUploadMB     int

	// WSAllowedOrigins lists origin host patterns accepted on /ws/votes in
	// addition to same-origin connections.
	WSAllowedOrigins []string

	Voting VotingConfig
}

// VotingConfig groups the server-side voting policy switches.
type VotingConfig struct {
	StartingVotes   int
	WeeklyLimit     bool
	OneVotePerVideo bool
	RateLimitRPS    float64
	RateLimitBurst  int
}

var defaults = map[string]interface{}{
	"SERVER_PORT":           "8080",
	"ENVIRONMENT":           "development",
	"LOG_LEVEL":             "info",
	"DB_DRIVER":             "mysql",
	"DATABASE_DSN":          "user:password@tcp(localhost:3306)/quantum_vision?charset=utf8mb4&parseTime=True&loc=Local",
	"RESET_DB":              false,
	"REDIS_ADDR":            "localhost:6379",
	"REDIS_DB":              0,
	"REDIS_PASSWORD":        "",
	"JWT_SECRET":            "change-me",
	"SWAGGER_HOST":          "",
	"UPLOAD_DIR":            "uploads",
	"UPLOAD_URL_PREFIX":     "/uploads",
	"MAX_UPLOAD_MB":         500,
	"WS_ALLOWED_ORIGINS":    "",
	"STARTING_VOTES":        10,
	"VOTE_WEEKLY_LIMIT":     false,
	"VOTE_ONE_PER_VIDEO":    false,
	"VOTE_RATE_LIMIT_RPS":   1.0,
	"VOTE_RATE_LIMIT_BURST": 5,
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("read config: " + err.Error())
		}
	}
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		ServerPort:      v.GetString("SERVER_PORT"),
		Environment:     v.GetString("ENVIRONMENT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		ResetDB:         v.GetBool("RESET_DB"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisDB:         v.GetInt("REDIS_DB"),
		RedisPass:       v.GetString("REDIS_PASSWORD"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		SwaggerHost:     v.GetString("SWAGGER_HOST"),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		UploadURLPrefix: strings.TrimRight(v.GetString("UPLOAD_URL_PREFIX"), "/"),
		MaxUploadMB:     v.GetInt("MAX_UPLOAD_MB"),
		Voting: VotingConfig{
			StartingVotes:   v.GetInt("STARTING_VOTES"),
			WeeklyLimit:     v.GetBool("VOTE_WEEKLY_LIMIT"),
			OneVotePerVideo: v.GetBool("VOTE_ONE_PER_VIDEO"),
			RateLimitRPS:    v.GetFloat64("VOTE_RATE_LIMIT_RPS"),
			RateLimitBurst:  v.GetInt("VOTE_RATE_LIMIT_BURST"),
		},
	}
	cfg.WSAllowedOrigins = splitList(v.GetString("WS_ALLOWED_ORIGINS"))
	if cfg.Voting.StartingVotes < 0 {
		cfg.Voting.StartingVotes = 0
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 500
	}
	return cfg
}

// splitList parses a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
