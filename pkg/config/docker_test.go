package config

import (
	"testing"
)

func TestResolveHostForDocker_PassThrough(t *testing.T) {
	// Non-loopback hosts are never rewritten, in or out of a container.
	hosts := []string{
		"db.school.example",
		"192.168.1.100",
		"host.docker.internal",
		"::1",
	}

	for _, host := range hosts {
		if got := ResolveHostForDocker(host); got != host {
			t.Errorf("ResolveHostForDocker(%q) = %q, want unchanged", host, got)
		}
	}
}

func TestResolveHostForDocker_Loopback(t *testing.T) {
	// Loopback hosts are rewritten only when the process itself runs in a
	// container, which depends on the test environment.
	want := func(host string) string {
		if IsRunningInDocker() {
			return "host.docker.internal"
		}
		return host
	}

	for _, host := range []string{"localhost", "127.0.0.1"} {
		if got := ResolveHostForDocker(host); got != want(host) {
			t.Errorf("ResolveHostForDocker(%q) = %q, want %q", host, got, want(host))
		}
	}
}
