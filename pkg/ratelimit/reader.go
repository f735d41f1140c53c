// Package ratelimit provides a token-bucket bandwidth limit for download
// streams. Transfers are strictly sequential in this tool, so one limiter
// per run is enough; wrapping the HTTP response body keeps the limit
// transparent to the hashing and file-writing code downstream.
package ratelimit

import (
	"io"
	"sync"
	"time"
)

// minBucket keeps small limits from stuttering on every read.
const minBucket = 64 * 1024

// Limiter is a token bucket measured in bytes.
type Limiter struct {
	bytesPerSecond int64

	mu         sync.Mutex
	tokens     int64
	bucketSize int64
	lastRefill time.Time
}

// NewLimiter creates a limiter for the given bytes-per-second rate.
// A rate <= 0 means unlimited and returns nil; NewReader treats a nil
// limiter as a passthrough.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	bucket := bytesPerSecond
	if bucket < minBucket {
		bucket = minBucket
	}
	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		tokens:         bucket,
		bucketSize:     bucket,
		lastRefill:     time.Now(),
	}
}

// take blocks until n tokens are available, then consumes them.
func (l *Limiter) take(n int64) {
	if n > l.bucketSize {
		n = l.bucketSize
	}
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return
		}
		deficit := n - l.tokens
		l.mu.Unlock()

		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		time.Sleep(wait)
	}
}

// refill adds tokens for the time elapsed since the last refill.
// Caller must hold mu.
func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.lastRefill)
	if elapsed <= 0 {
		return
	}
	l.tokens += int64(float64(l.bytesPerSecond) * elapsed.Seconds())
	if l.tokens > l.bucketSize {
		l.tokens = l.bucketSize
	}
	l.lastRefill = now
}

// Reader wraps an io.Reader so reads never exceed the limiter's rate.
type Reader struct {
	r       io.Reader
	limiter *Limiter
}

// NewReader wraps r with the given limiter. A nil limiter returns r
// unchanged.
func NewReader(r io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &Reader{r: r, limiter: limiter}
}

// Read blocks until the bucket allows the requested amount, then reads.
func (r *Reader) Read(p []byte) (int, error) {
	want := int64(len(p))
	if want > r.limiter.bucketSize {
		want = r.limiter.bucketSize
	}
	r.limiter.take(want)
	n, err := r.r.Read(p[:want])
	if int64(n) < want {
		// Give unused tokens back so short reads don't over-throttle.
		r.limiter.mu.Lock()
		r.limiter.tokens += want - int64(n)
		if r.limiter.tokens > r.limiter.bucketSize {
			r.limiter.tokens = r.limiter.bucketSize
		}
		r.limiter.mu.Unlock()
	}
	return n, err
}
