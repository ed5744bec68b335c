package routes

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"loja_pix/internal/usecase"
)

const defaultPort = "8080"

type Config struct {
	Port           string
	JWTSecret      string
	RabbitMQURL    string
	WebhookRPS     float64
	WebhookBurst   int
	PaymentUseCase usecase.PaymentUseCaseConfig
}

// LoadConfig reads the HTTP service settings from the environment. Invalid
// numeric values are logged and replaced by their defaults.
func LoadConfig() Config {
	uc := usecase.DefaultPaymentUseCaseConfig()
	uc.ProviderTimeout = envDuration("PROVIDER_TIMEOUT", uc.ProviderTimeout)
	uc.GrantAttempts = envInt("ENTITLEMENT_GRANT_ATTEMPTS", uc.GrantAttempts)

	return Config{
		Port:           getenvDefault("PORT", defaultPort),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RabbitMQURL:    strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		WebhookRPS:     envFloat("WEBHOOK_RATE_LIMIT_RPS", 5),
		WebhookBurst:   envInt("WEBHOOK_RATE_LIMIT_BURST", 10),
		PaymentUseCase: uc,
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envDuration accepts Go durations ("8s") or plain seconds ("8").
func envDuration(key string, def time.Duration) time.Duration {
	raw := getenvDefault(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	log.Printf("[config] invalid %s=%q, using %s", key, raw, def)
	return def
}

func envInt(key string, def int) int {
	raw := getenvDefault(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	raw := getenvDefault(key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] invalid %s=%q, using %g", key, raw, def)
		return def
	}
	return f
}
