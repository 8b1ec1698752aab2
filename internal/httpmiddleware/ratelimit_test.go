package httpmiddleware

import "testing"

func TestTokenBucketAllow(t *testing.T) {
	l := NewTokenBucket(3, 60)

	for i := 0; i < 3; i++ {
		if !l.allow("10.0.0.1") {
			t.Fatalf("request %d denied within capacity", i+1)
		}
	}
	if l.allow("10.0.0.1") {
		t.Error("request over capacity allowed")
	}

	// Other clients have their own bucket.
	if !l.allow("10.0.0.2") {
		t.Error("fresh client denied")
	}
}

func TestTokenBucketDefaultsCapacity(t *testing.T) {
	l := NewTokenBucket(0, 5)
	if l.capacity != 5 {
		t.Errorf("capacity = %d, want rate fallback 5", l.capacity)
	}
}
