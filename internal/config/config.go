package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)


type Config struct {
	Env string
	Port int
	DBURL string

	// session cookie settings
	SessionSecret string
	SessionMaxAge time.Duration

	// tracing (empty endpoint falls back to localhost:4317)
	OTLPEndpoint string

	// optional bootstrap user created at startup
	SeedEmail    string
	SeedPassword string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT",8080)
	dbURL := buildDBURL()

	return Config{
		Env: env,
		Port: port,
		DBURL: dbURL,
		SessionSecret: getEnv("SESSION_SECRET", "dev-only-insecure-secret"),
		SessionMaxAge: time.Duration(getEnvInt("SESSION_MAX_AGE_SECONDS", 86400)) * time.Second,
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		SeedEmail:    getEnv("SEED_USER_EMAIL", ""),
		SeedPassword: getEnv("SEED_USER_PASSWORD", ""),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST","127.0.0.1")
	port := getEnv("DB_PORT","5432")
	user := getEnv("DB_USER","authhub")
	pass := getEnv("DB_PASSWORD","authhub")
	name := getEnv("DB_NAME", "authhub")
	ssl := getEnv("DB_SSLMODE", "disable")


	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration)(context.Context, context.CancelFunc){
	return context.WithTimeout(context.Background(),duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
		}

		return num
	}
	return fallback
}
