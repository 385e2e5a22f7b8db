package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetBaseURL(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{Target{Host: "localhost", Port: 12345}, "http://localhost:12345"},
		{Target{Host: "10.0.0.2", Port: 80}, "http://10.0.0.2:80"},
		{Target{Host: "::1", Port: 8080}, "http://[::1]:8080"},
		{Target{Host: "https://files.example.com", Port: 8443}, "https://files.example.com:8443"},
		{Target{Host: "HTTP://example.com/", Port: 1}, "http://example.com:1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.target.BaseURL(), "target %+v", tt.target)
	}
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "localhost:12345", Target{Host: "localhost", Port: 12345}.String())
	assert.Equal(t, "example.com:9", Target{Host: "https://example.com", Port: 9}.String())
}
