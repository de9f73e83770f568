// internal/capture/navigate_test.go
package capture

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pagesnap/pagesnap/internal/utils"
)

// errBlockUntilDeadline makes the stub session hang until the run
// context expires, simulating a page that never settles.
var errBlockUntilDeadline = errors.New("block until deadline")

// stubSession scripts Run outcomes by call index; calls beyond the
// script return defaultErr (usually nil).
type stubSession struct {
	mu         sync.Mutex
	script     []error
	defaultErr error
	runs       int
	released   int
}

func (s *stubSession) Run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	i := s.runs
	s.runs++
	err := s.defaultErr
	if i < len(s.script) {
		err = s.script[i]
	}
	s.mu.Unlock()

	if errors.Is(err, errBlockUntilDeadline) {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *stubSession) Release() {
	s.mu.Lock()
	s.released++
	s.mu.Unlock()
}

func (s *stubSession) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func quietLogger() utils.Logger {
	return utils.NewLoggerWithWriter(utils.ErrorLevel, io.Discard)
}

func testNavigator() *Navigator {
	n := NewNavigator(300*time.Millisecond, 100*time.Millisecond, quietLogger())
	n.readyWindow = 10 * time.Millisecond
	n.pollInterval = 5 * time.Millisecond
	return n
}

func TestNavigateFallsBackAfterPrimaryFailure(t *testing.T) {
	sess := &stubSession{script: []error{errors.New("idle wait gave up")}}
	req := &Request{URL: "https://example.com"}

	if err := testNavigator().Navigate(context.Background(), sess, req); err != nil {
		t.Fatalf("Navigate = %v, want fallback success", err)
	}
	if sess.runCount() < 2 {
		t.Errorf("runs = %d, want at least primary plus fallback", sess.runCount())
	}
}

func TestNavigateFailsWhenBothAttemptsFail(t *testing.T) {
	fallbackErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	sess := &stubSession{script: []error{errors.New("primary failed"), fallbackErr}}
	req := &Request{URL: "https://nope.invalid"}

	err := testNavigator().Navigate(context.Background(), sess, req)
	if err == nil {
		t.Fatal("Navigate = nil, want error")
	}
	if !errors.Is(err, fallbackErr) {
		t.Errorf("error should carry the fallback cause, got %v", err)
	}
}

func TestNavigateSkipsFallbackWhenParentExpired(t *testing.T) {
	sess := &stubSession{script: []error{errBlockUntilDeadline}, defaultErr: errBlockUntilDeadline}
	req := &Request{URL: "https://slow.example.com"}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := testNavigator().Navigate(ctx, sess, req)
	if err == nil {
		t.Fatal("Navigate = nil, want error")
	}
	if sess.runCount() != 1 {
		t.Errorf("runs = %d, want 1: no fallback once the page budget is gone", sess.runCount())
	}
}

func TestNavigateHonorsSettleDelay(t *testing.T) {
	sess := &stubSession{}
	req := &Request{URL: "https://example.com", Delay: 60 * time.Millisecond}

	start := time.Now()
	if err := testNavigator().Navigate(context.Background(), sess, req); err != nil {
		t.Fatalf("Navigate = %v, want nil", err)
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("elapsed = %v, want at least the settle delay", elapsed)
	}
}

func TestNavigateSettleDelayAbortsOnCancel(t *testing.T) {
	sess := &stubSession{}
	req := &Request{URL: "https://example.com", Delay: 5 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := testNavigator().Navigate(ctx, sess, req)
	if err == nil {
		t.Fatal("Navigate = nil, want context error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("settle delay ignored cancellation, took %v", elapsed)
	}
}
