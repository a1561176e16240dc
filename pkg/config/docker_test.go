package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeHost_OutsideContainer(t *testing.T) {
	for _, host := range []string{"localhost", "127.0.0.1", "db.internal", ""} {
		assert.Equal(t, host, probeHost(host, false))
	}
}

func TestProbeHost_InsideContainer(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"localhost", "host.docker.internal"},
		{"127.0.0.1", "host.docker.internal"},
		{"::1", "host.docker.internal"},
		{"mydb.example.com", "mydb.example.com"},
		{"192.168.1.100", "192.168.1.100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, probeHost(tt.input, true), "host %q", tt.input)
	}
}

func TestProbeHost_MatchesDetection(t *testing.T) {
	got := ProbeHost("localhost")
	if InContainer() {
		assert.Equal(t, "host.docker.internal", got)
	} else {
		assert.Equal(t, "localhost", got)
	}
}
