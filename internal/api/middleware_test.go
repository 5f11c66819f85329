package api

import "testing"

func TestRateLimiterExhaustsBurst(t *testing.T) {
	limiter := getIPLimiter("203.0.113.7")

	for i := 0; i < 50; i++ {
		if !limiter.Allow() {
			t.Fatalf("request %d denied inside burst", i)
		}
	}
	if limiter.Allow() {
		t.Fatal("request allowed past the burst budget")
	}
}

func TestRateLimiterIsPerIP(t *testing.T) {
	a := getIPLimiter("203.0.113.8")
	b := getIPLimiter("203.0.113.9")
	if a == b {
		t.Fatal("distinct IPs share a limiter")
	}
	if a != getIPLimiter("203.0.113.8") {
		t.Fatal("same IP did not reuse its limiter")
	}
}
