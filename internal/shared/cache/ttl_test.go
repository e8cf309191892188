package cache

import (
	"testing"
	"time"
)

func TestTTLExpiry(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTL(func() time.Time { return now })

	c.Set("k", "v", 2*time.Minute)
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Fatalf("expected fresh hit, got %v %v", got, ok)
	}

	now = now.Add(2*time.Minute + time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestTTLPurge(t *testing.T) {
	c := NewTTL(nil)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Purge()
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected purge to drop a")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected purge to drop b")
	}
}

func TestTTLNilReceiverIsSafe(t *testing.T) {
	var c *TTL
	c.Set("k", "v", time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("nil cache should never hit")
	}
	c.Purge()
}

func TestTTLZeroDurationNotStored(t *testing.T) {
	c := NewTTL(nil)
	c.Set("k", "v", 0)
	if _, ok := c.Get("k"); ok {
		t.Fatal("zero ttl should not store")
	}
}
