package config

import (
	"os"
	"sync"
)

const dockerHostGateway = "host.docker.internal"

var (
	containerOnce   sync.Once
	inContainer     bool
	containerMarker = "/.dockerenv"
)

// InContainer reports whether the CLI runs inside a Docker container.
// The /.dockerenv marker is checked once and cached.
func InContainer() bool {
	containerOnce.Do(func() {
		_, err := os.Stat(containerMarker)
		inContainer = err == nil
	})
	return inContainer
}

// ProbeHost maps a database host typed by the user to the address a local
// probe should dial. Loopback hosts point at the container itself when the CLI
// runs in Docker, so they are rewritten to the host gateway.
func ProbeHost(host string) string {
	return probeHost(host, InContainer())
}

func probeHost(host string, containerized bool) string {
	if !containerized {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return dockerHostGateway
	}
	return host
}
