// internal/capture/session_test.go
package capture

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pagesnap/pagesnap/internal/config"
)

func TestSessionReleaseIdempotent(t *testing.T) {
	var pageCancels, allocCancels int

	s := &Session{
		ctx:         context.Background(),
		cancel:      func() { pageCancels++ },
		allocCancel: func() { allocCancels++ },
		log:         quietLogger(),
	}

	s.Release()
	s.Release()
	s.Release()

	if pageCancels != 1 || allocCancels != 1 {
		t.Errorf("cancels = %d/%d, want 1/1 regardless of Release call count", pageCancels, allocCancels)
	}
}

func chromePath(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skipf("no Chrome binary found in PATH, skipping browser test")
	return ""
}

func TestManagerAcquireLaunchesAndReleases(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	path := chromePath(t)

	mgr := NewManager(browserTestConfig(path), 10*time.Second, quietLogger())
	req := &Request{URL: "about:blank", Width: 800, Height: 600}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := mgr.Acquire(ctx, req)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer sess.Release()

	var title string
	err = sess.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.Evaluate(`document.title`, &title),
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestManagerAcquireFailsFastOnBadBinary(t *testing.T) {
	cfg := browserTestConfig("/nonexistent/chrome-binary")
	mgr := NewManager(cfg, 2*time.Second, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	_, err := mgr.Acquire(ctx, &Request{URL: "https://example.com", Width: 1280, Height: 720})
	if err == nil {
		t.Fatal("Acquire = nil error for a missing binary")
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("Acquire took %v, should fail within the launch budget", elapsed)
	}
}

func browserTestConfig(execPath string) config.BrowserConfig {
	return config.BrowserConfig{
		ExecPath:   execPath,
		NoSandbox:  true,
		DisableGPU: true,
	}
}
