package config

import (
	"fmt"
	"net"
	"net/url"
	"os/exec"
	"strings"
)

// ResolveValue handles magic URL schemes in the server_url value:
// - srv://record/path -> DNS SRV lookup + path (always HTTP)
// - $(...) -> shell command output
// - ${VAR} or $VAR -> environment variable
// - literal string -> returned as-is
func ResolveValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	switch {
	case strings.HasPrefix(value, "srv://"):
		return resolveSRV(value)
	case strings.HasPrefix(value, "$(") && strings.HasSuffix(value, ")"):
		return resolveCommand(value[2 : len(value)-1])
	default:
		return expandEnv(value), nil
	}
}

// resolveSRV handles srv://_service._proto.domain/path URLs.
// Returns http://host:port/path; internal RAG deployments advertise
// themselves over plain HTTP behind the VPN.
func resolveSRV(srvURL string) (string, error) {
	u, err := url.Parse(srvURL)
	if err != nil {
		return "", fmt.Errorf("invalid srv:// URL: %w", err)
	}

	record := u.Host
	path := u.Path

	if record == "" {
		return "", fmt.Errorf("srv:// URL missing host: %s", srvURL)
	}

	_, addrs, err := net.LookupSRV("", "", record)
	if err != nil {
		return "", fmt.Errorf("SRV lookup failed for %s: %w", record, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("no SRV records found for %s", record)
	}

	// First record; Go's resolver sorts by priority and weight.
	addr := addrs[0]
	host := strings.TrimSuffix(addr.Target, ".")

	return fmt.Sprintf("http://%s:%d%s", host, addr.Port, path), nil
}

// resolveCommand executes a shell command and returns its output
func resolveCommand(cmd string) (string, error) {
	output, err := exec.Command("sh", "-c", cmd).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("command failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("command failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}
