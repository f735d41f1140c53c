package ratelimit

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestNewLimiter(t *testing.T) {
	t.Run("ZeroMeansUnlimited", func(t *testing.T) {
		if NewLimiter(0) != nil {
			t.Error("NewLimiter(0) should return nil")
		}
	})

	t.Run("NegativeMeansUnlimited", func(t *testing.T) {
		if NewLimiter(-1) != nil {
			t.Error("NewLimiter(-1) should return nil")
		}
	})

	t.Run("SmallRateGetsMinimumBucket", func(t *testing.T) {
		l := NewLimiter(1000)
		if l == nil {
			t.Fatal("NewLimiter(1000) returned nil")
		}
		if l.bucketSize < minBucket {
			t.Errorf("bucketSize = %d, want at least %d", l.bucketSize, minBucket)
		}
	})

	t.Run("LargeRateBucketMatchesRate", func(t *testing.T) {
		l := NewLimiter(10 * 1024 * 1024)
		if l.bucketSize != 10*1024*1024 {
			t.Errorf("bucketSize = %d, want %d", l.bucketSize, 10*1024*1024)
		}
	})
}

func TestNewReader(t *testing.T) {
	t.Run("NilLimiterPassthrough", func(t *testing.T) {
		base := strings.NewReader("data")
		if r := NewReader(base, nil); r != base {
			t.Error("nil limiter should return the original reader")
		}
	})

	t.Run("ReadsAllData", func(t *testing.T) {
		content := bytes.Repeat([]byte("x"), 128*1024)
		r := NewReader(bytes.NewReader(content), NewLimiter(100*1024*1024))
		got, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("ReadAll error = %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Error("limited reader corrupted the stream")
		}
	})
}

func TestReaderThrottles(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-sensitive")
	}
	// 128 KiB at 64 KiB/s: bucket starts full (64 KiB), so the second half
	// has to wait roughly a second.
	content := bytes.Repeat([]byte("y"), 128*1024)
	r := NewReader(bytes.NewReader(content), NewLimiter(64*1024))

	start := time.Now()
	if _, err := io.ReadAll(r); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
		t.Errorf("transfer finished in %v, expected throttling to slow it down", elapsed)
	}
}
