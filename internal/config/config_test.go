package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL", "LOG_FORMAT", "DATABASE_URL", "REDIS_URL",
		"KAFKA_BROKERS", "KAFKA_TOPIC", shutdownSecondsEnvVar, shutdownDurationEnvVar,
		idemTTLSecondsEnvVar, idemTTLDurEnvVar, initRateLimitEnvVar, historyLimitEnvVar,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppEnv != defaultAppEnv || !cfg.IsDevelopment() {
		t.Fatalf("expected development env, got %q", cfg.AppEnv)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
	if cfg.IdempotencyTTL != defaultIdempotencyTTL || cfg.ShutdownPeriod != defaultShutdownDelay {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.HistoryLimit != defaultHistoryLimit || cfg.InitRateLimit != defaultInitRateLimit {
		t.Fatalf("unexpected limits: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected no kafka brokers, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadRequiresDatabaseOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://wallet@localhost/wallet")
	if _, err := Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv(idemTTLDurEnvVar, "90m")
	t.Setenv(shutdownSecondsEnvVar, "3")
	t.Setenv(historyLimitEnvVar, "20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address() != ":9090" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.IdempotencyTTL != 90*time.Minute || cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("unexpected durations: ttl=%v shutdown=%v", cfg.IdempotencyTTL, cfg.ShutdownPeriod)
	}
	if cfg.HistoryLimit != 20 {
		t.Fatalf("expected history limit 20, got %d", cfg.HistoryLimit)
	}
}

func TestLoadRejectsInvalidNumbers(t *testing.T) {
	cases := map[string]string{
		shutdownSecondsEnvVar: "soon",
		idemTTLDurEnvVar:      "a day",
		initRateLimitEnvVar:   "-1",
		historyLimitEnvVar:    "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
