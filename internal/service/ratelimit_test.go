package service_test

import (
	"testing"

	"github.com/msomdec/snapmap/internal/service"
)

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb := service.NewTokenBucket(1, 3) // rate=1/s, capacity=3
	defer tb.Stop()

	for i := 0; i < 3; i++ {
		if !tb.Allow("client") {
			t.Fatalf("upload %d should be allowed (bucket not yet empty)", i+1)
		}
	}
	if tb.Allow("client") {
		t.Fatal("4th upload should be denied (bucket empty)")
	}
}

func TestTokenBucket_DifferentKeysAreIndependent(t *testing.T) {
	tb := service.NewTokenBucket(1, 1)
	defer tb.Stop()

	if !tb.Allow("ip-a") {
		t.Fatal("ip-a first upload should be allowed")
	}
	if tb.Allow("ip-a") {
		t.Fatal("ip-a second upload should be denied")
	}
	if !tb.Allow("ip-b") {
		t.Fatal("ip-b first upload should be allowed (independent bucket)")
	}
	if tb.Len() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", tb.Len())
	}
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	tb := service.NewTokenBucket(0, 2)
	defer tb.Stop()

	if !tb.Allow("k") || !tb.Allow("k") {
		t.Fatal("first two uploads should be allowed")
	}
	if tb.Allow("k") {
		t.Fatal("third upload should be denied (no refill)")
	}
}

func TestTokenBucket_StopTwice(t *testing.T) {
	tb := service.NewTokenBucket(1, 1)
	tb.Stop()
	tb.Stop()
}
