package cancel

import (
	"errors"
	"sync"
	"testing"
)

func TestToken(t *testing.T) {
	t.Run("FreshTokenNotCanceled", func(t *testing.T) {
		tok := New()
		if tok.Requested() {
			t.Error("new token should not be canceled")
		}
		if err := tok.Err(); err != nil {
			t.Errorf("Err() = %v, want nil", err)
		}
	})

	t.Run("RequestSetsFlag", func(t *testing.T) {
		tok := New()
		tok.Request()
		if !tok.Requested() {
			t.Error("Requested() should be true after Request()")
		}
		if !errors.Is(tok.Err(), ErrCanceled) {
			t.Errorf("Err() = %v, want ErrCanceled", tok.Err())
		}
	})

	t.Run("RequestIsIdempotent", func(t *testing.T) {
		tok := New()
		tok.Request()
		tok.Request()
		if !tok.Requested() {
			t.Error("Requested() should remain true")
		}
	})

	t.Run("NilTokenNeverCancels", func(t *testing.T) {
		var tok *Token
		tok.Request() // must not panic
		if tok.Requested() {
			t.Error("nil token should never report canceled")
		}
		if err := tok.Err(); err != nil {
			t.Errorf("nil token Err() = %v, want nil", err)
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		tok := New()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				tok.Request()
			}()
			go func() {
				defer wg.Done()
				_ = tok.Requested()
			}()
		}
		wg.Wait()
		if !tok.Requested() {
			t.Error("token should be canceled after concurrent requests")
		}
	})
}
