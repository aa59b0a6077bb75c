package server

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup from the
// environment (optionally seeded from a .env file).
type Config struct {
	Port        int
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration
	WordsCSV    string
}

func LoadConfig() Config {
	// A missing .env file is fine; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:        8080,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTL:      24 * time.Hour,
		WordsCSV:    os.Getenv("WORDS_CSV"),
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			log.Printf("[LoadConfig] invalid PORT %q, using %d: %v", raw, cfg.Port, err)
		} else {
			cfg.Port = port
		}
	}

	if raw := os.Getenv("JWT_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("[LoadConfig] invalid JWT_TTL %q, using %s: %v", raw, cfg.JWTTTL, err)
		} else {
			cfg.JWTTTL = ttl
		}
	}

	return cfg
}
