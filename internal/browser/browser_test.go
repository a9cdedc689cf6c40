package browser

import (
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Headless {
		t.Error("expected headless to be false by default: the operator solves CAPTCHAs in a visible window")
	}

	if opts.Timeout != 60*time.Second {
		t.Errorf("expected timeout to be 60s, got %v", opts.Timeout)
	}

	if opts.ViewportWidth != 1920 || opts.ViewportHeight != 1080 {
		t.Errorf("expected viewport to be 1920x1080, got %dx%d", opts.ViewportWidth, opts.ViewportHeight)
	}

	if opts.UserAgent == "" {
		t.Error("expected a default user agent")
	}
}
