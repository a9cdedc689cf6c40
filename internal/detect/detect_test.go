package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlocked(t *testing.T) {
	d := NewDefault()

	tests := []struct {
		name     string
		pageText string
		expected bool
	}{
		{"empty text", "", false},
		{"captcha page", "<html><body>Please solve the CAPTCHA below</body></html>", true},
		{"mixed case verify", "Please Verify you are human", true},
		{"lower case verify", "please verify you are human", true},
		{"access denied", "ACCESS DENIED - your request was flagged", true},
		{"login wall", "You must Login to continue", true},
		{"clean product page", "<div class=\"item\"><span>Wireless Headphones</span><span>$49</span></div>", false},
		{"indicator split across words", "ver ify", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.Blocked(tt.pageText))
		})
	}
}

func TestBlockedWithCustomIndicators(t *testing.T) {
	d := New([]string{"robot check"})

	assert.True(t, d.Blocked("Amazon Robot Check"))
	assert.False(t, d.Blocked("please sign in")) // defaults not inherited
}
