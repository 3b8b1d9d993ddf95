package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "SEND_DELAY", "AMQP_URL", "BODY_LIMIT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	c := FromEnv()
	if c.HTTPAddr != ":3000" {
		t.Fatalf("HTTPAddr = %q", c.HTTPAddr)
	}
	if c.SendDelay != 2*time.Second {
		t.Fatalf("SendDelay = %v", c.SendDelay)
	}
	if c.AMQPURL != "" {
		t.Fatalf("AMQPURL should default to disabled")
	}
	if c.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", c.LogLevel)
	}
}

func TestSendDelayParsing(t *testing.T) {
	cases := map[string]time.Duration{
		"500ms": 500 * time.Millisecond,
		"3s":    3 * time.Second,
		"750":   750 * time.Millisecond,
		"0":     0,
		"-1s":   2 * time.Second,
		"soon":  2 * time.Second,
	}
	for in, want := range cases {
		t.Setenv("SEND_DELAY", in)
		if got := FromEnv().SendDelay; got != want {
			t.Fatalf("SEND_DELAY=%q -> %v, want %v", in, got, want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if got := FromEnv().LogLevel; got != slog.LevelDebug {
		t.Fatalf("LogLevel = %v, want debug", got)
	}
}
