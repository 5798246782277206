package redis

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kozaktomas/makeup-coach/internal/config"
)

func TestKey(t *testing.T) {
	if got := Key("alice"); got != "makeup-coach:progress:alice" {
		t.Errorf("Key() = %q", got)
	}
}

func TestNewClientRequiresAddress(t *testing.T) {
	if _, err := NewClient(&config.RedisConfig{}); err == nil {
		t.Error("expected error for empty address")
	}
}

func TestLoadReportsConnectionErrors(t *testing.T) {
	// nothing listens on port 1
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	state, err := NewProgressRepository(client).Load(context.Background(), "alice")
	if err == nil {
		t.Fatal("expected connection error")
	}
	if state != nil {
		t.Errorf("expected nil state, got %+v", state)
	}
}
