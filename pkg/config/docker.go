package config

import (
	"os"
	"sync"
)

// containerMarkers are files whose presence identifies a container runtime:
// Docker creates /.dockerenv, podman creates /run/.containerenv.
var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

var (
	containerOnce sync.Once
	inContainer   bool
)

// IsRunningInDocker reports whether the process runs inside a container.
// The check is performed once and cached.
func IsRunningInDocker() bool {
	containerOnce.Do(func() {
		for _, marker := range containerMarkers {
			if _, err := os.Stat(marker); err == nil {
				inContainer = true
				return
			}
		}
	})
	return inContainer
}

// ResolveHostForDocker rewrites loopback database hosts to
// host.docker.internal when the server itself runs in a container, so a
// config written for bare-metal development keeps working under compose.
// Any other host passes through unchanged.
func ResolveHostForDocker(host string) string {
	if host != "localhost" && host != "127.0.0.1" {
		return host
	}
	if !IsRunningInDocker() {
		return host
	}
	return "host.docker.internal"
}
