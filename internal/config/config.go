package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Cfg struct {
	Server     Server
	Logger     Logger
	OpenAI     OpenAI
	Database   Database
	Migrations Migrations
	Annotate   Annotate
	Fetch      Fetch
}

type Server struct {
	Port string
}

type Logger struct {
	Env   string
	Level string
}

type OpenAI struct {
	Key               string
	Model             string
	RequestsPerMinute int
	TokensPerHour     int
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// DSN is the gorm/pgx connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// URL is the connection URL golang-migrate expects.
func (d Database) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type Migrations struct {
	Path string
}

type Annotate struct {
	DebugDir string
}

type Fetch struct {
	TimeoutSeconds int
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		Server: Server{
			Port: env("PORT", "8004"),
		},
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
		},
		OpenAI: OpenAI{
			Key:               os.Getenv("OPENAI_API_KEY"),
			Model:             env("OPENAI_MODEL", "gpt-4o"),
			RequestsPerMinute: envInt("OPENAI_RPM", 60),
			TokensPerHour:     envInt("OPENAI_TPH", 90000),
		},
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "valetudo"),
			User:     env("DB_USER", "valetudo"),
			Password: os.Getenv("DB_PASS"),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
		Annotate: Annotate{
			DebugDir: os.Getenv("ANNOTATE_DEBUG_DIR"),
		},
		Fetch: Fetch{
			TimeoutSeconds: envInt("FETCH_TIMEOUT_SECONDS", 15),
		},
	}

	return cfg, nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
