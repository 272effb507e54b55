package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFile is read when present; real environment variables win over it.
var envFile = ".env"

// parseEnv overlays Config with environment variables:
//
//	HTTP_ADDR, GRPC_ADDR, DATABASE_DSN, JWT_SECRET, TOKEN_TTL (Go duration),
//	BCRYPT_COST, LOG_BACKEND, LOG_LEVEL, OUTBOX_SIZE
//
// Malformed numeric or duration values panic, like a malformed JSON file.
func parseEnv(c *Config) {
	_ = godotenv.Load(envFile)

	setString(&c.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&c.EndpointAddrGRPC, "GRPC_ADDR")
	setString(&c.DatabaseDSN, "DATABASE_DSN")
	setString(&c.SecretKey, "JWT_SECRET")
	setString(&c.LogBackend, "LOG_BACKEND")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v, ok := os.LookupEnv("TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		c.TokenValidityDuration = d
	}
	setInt(&c.BcryptCost, "BCRYPT_COST")
	setInt(&c.OutboxSize, "OUTBOX_SIZE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}
