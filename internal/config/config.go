package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	HTTPAddr    string
	CORSOrigins []string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAITimeout time.Duration

	LogLevel string
	LogJSON  bool

	// Location is used to turn task timestamps into calendar days.
	Location  *time.Location
	DailyGoal int

	// Extension client settings.
	APIBase     string
	ExtCacheDir string
}

// Load reads configuration from defaults, an optional moodjournal.yaml and the
// environment. Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("db_driver", DriverPostgres)
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("sqlite_path", "moodjournal.db")
	v.SetDefault("http_addr", ":4000")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("openai_timeout", "60s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("timezone", "Local")
	v.SetDefault("daily_goal", 5)
	v.SetDefault("api_base", "http://localhost:4000")
	v.SetDefault("ext_cache_dir", defaultCacheDir())

	v.SetConfigName("moodjournal") // .yaml is implicit
	if override := os.Getenv("MOODJOURNAL_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("db_driver")))
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported db_driver %q", driver)
	}

	port := v.GetInt("db_port")
	if port <= 0 {
		port = 5432 // fallback
	}

	timeout, err := time.ParseDuration(v.GetString("openai_timeout"))
	if err != nil {
		return nil, fmt.Errorf("parse openai_timeout: %w", err)
	}

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	goal := v.GetInt("daily_goal")
	if goal < 1 {
		goal = 1
	}

	return &Config{
		DBDriver:   driver,
		DBHost:     v.GetString("db_host"),
		DBPort:     port,
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_sslmode"),
		SQLitePath: v.GetString("sqlite_path"),

		HTTPAddr:    v.GetString("http_addr"),
		CORSOrigins: splitList(v.GetString("cors_origins")),

		OpenAIKey:     v.GetString("openai_api_key"),
		OpenAIModel:   v.GetString("openai_model"),
		OpenAIBaseURL: strings.TrimRight(v.GetString("openai_base_url"), "/"),
		OpenAITimeout: timeout,

		LogLevel: v.GetString("log_level"),
		LogJSON:  v.GetBool("log_json"),

		Location:  loc,
		DailyGoal: goal,

		APIBase:     strings.TrimRight(v.GetString("api_base"), "/"),
		ExtCacheDir: v.GetString("ext_cache_dir"),
	}, nil
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}
	return c.ConnString()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".moodjournal-extension"
	}
	return dir + string(os.PathSeparator) + "moodjournal-extension"
}
