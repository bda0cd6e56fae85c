package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    Server
	Database  Database
	Gemini    Gemini
	AWS       AWS
	Cognito   Cognito
	Redis     Redis
	Otel      Otel
	Grading   Grading
	Assembly  Assembly
	Keywords  Keywords
	Location  *time.Location
	RemoteTTL time.Duration
}

type Server struct {
	Port         string
	GinMode      string
	AllowOrigins []string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Gemini struct {
	ApiKey string
	Model  string
}

type AWS struct {
	Region string
}

type Cognito struct {
	UserPoolID   string
	ClientID     string
	ClientSecret string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Otel struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRatio float64
}

// Grading toggles the remote semantic step per call site.
type Grading struct {
	SemanticEnabled       bool
	SubmitSemanticEnabled bool
	SubmitConcurrency     int
}

type Assembly struct {
	KeywordSearchMultiplier float64
}

type Keywords struct {
	Language string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("AWS_REGION", "ap-northeast-2")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("OTEL_SERVICE_NAME", "itop-api")
	viper.SetDefault("OTEL_SAMPLER_RATIO", 0.1)
	viper.SetDefault("REMOTE_TIMEOUT", "10s")
	viper.SetDefault("SEMANTIC_GRADING_ENABLED", true)
	viper.SetDefault("SUBMIT_SEMANTIC_GRADING", false)
	viper.SetDefault("SUBMIT_CONCURRENCY", 4)
	viper.SetDefault("KEYWORD_SEARCH_MULTIPLIER", 2.0)
	viper.SetDefault("KEYWORD_LANGUAGE", "ko")
	viper.SetDefault("TIMEZONE", "Asia/Seoul")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.GinMode = viper.GetString("GIN_MODE")
	config.Server.AllowOrigins = splitList(viper.GetString("CORS_ALLOW_ORIGINS"))

	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")

	config.Gemini.ApiKey = viper.GetString("GEMINI_API_KEY")
	config.Gemini.Model = viper.GetString("GEMINI_MODEL")

	config.AWS.Region = viper.GetString("AWS_REGION")
	config.Cognito.UserPoolID = viper.GetString("COGNITO_USER_POOL_ID")
	config.Cognito.ClientID = viper.GetString("COGNITO_APP_CLIENT_ID")
	config.Cognito.ClientSecret = viper.GetString("COGNITO_APP_CLIENT_SECRET")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.Otel.Enabled = viper.GetBool("OTEL_ENABLED")
	config.Otel.ServiceName = viper.GetString("OTEL_SERVICE_NAME")
	config.Otel.Endpoint = viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")
	config.Otel.SampleRatio = clampRatio(viper.GetFloat64("OTEL_SAMPLER_RATIO"))

	config.Grading.SemanticEnabled = viper.GetBool("SEMANTIC_GRADING_ENABLED")
	config.Grading.SubmitSemanticEnabled = viper.GetBool("SUBMIT_SEMANTIC_GRADING")
	config.Grading.SubmitConcurrency = viper.GetInt("SUBMIT_CONCURRENCY")
	if config.Grading.SubmitConcurrency <= 0 {
		config.Grading.SubmitConcurrency = 1
	}

	config.Assembly.KeywordSearchMultiplier = viper.GetFloat64("KEYWORD_SEARCH_MULTIPLIER")
	config.Keywords.Language = viper.GetString("KEYWORD_LANGUAGE")

	config.RemoteTTL = viper.GetDuration("REMOTE_TIMEOUT")
	if config.RemoteTTL <= 0 {
		config.RemoteTTL = 10 * time.Second
	}

	loc, err := time.LoadLocation(viper.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", viper.GetString("TIMEZONE"), err)
	}
	config.Location = loc

	if config.Gemini.ApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Semantic grading and keyword filtering will use local fallbacks.")
	}
	if config.Cognito.UserPoolID == "" || config.Cognito.ClientID == "" {
		log.Warn().Msg("Cognito pool or client id is not set. Authenticated routes will reject every token.")
	}

	log.Info().
		Str("port", config.Server.Port).
		Str("dbHost", config.Database.Host).
		Str("dbName", config.Database.Name).
		Str("awsRegion", config.AWS.Region).
		Bool("redis", config.Redis.Addr != "").
		Bool("otel", config.Otel.Enabled).
		Str("timezone", loc.String()).
		Msg("Config loaded")
	return &config, nil
}

// DSN builds the postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// Issuer is the token issuer URL of the configured user pool.
func (c Cognito) Issuer(region string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, c.UserPoolID)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
