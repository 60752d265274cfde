// Package privacy scrubs credentials and endpoint details from text before it
// reaches logs or API responses.
package privacy

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

var (
	// URLs with the schemes used by the SST provider, the advisors and the broker
	urlPattern = regexp.MustCompile(`\b(?:https?|tcp|ssl|tls|wss?|mqtts?)://\S+`)

	// Anthropic and OpenAI style secret keys
	apiKeyPattern = regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{8,}`)

	// Bearer tokens echoed back in error bodies
	bearerPattern = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._\-]+`)

	ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
)

// ScrubMessage removes credentials from a message. URLs lose their userinfo and
// query string, API keys and bearer tokens are replaced.
func ScrubMessage(message string) string {
	message = urlPattern.ReplaceAllStringFunc(message, SanitizeURL)
	message = apiKeyPattern.ReplaceAllString(message, redacted)
	return bearerPattern.ReplaceAllString(message, "Bearer "+redacted)
}

// SanitizeURL strips userinfo, query and fragment while keeping scheme, host,
// port and path, which is enough to tell endpoints apart in logs.
func SanitizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		hash := sha256.Sum256([]byte(rawURL))
		return fmt.Sprintf("url-hash-%x", hash[:8])
	}

	parsed.User = nil
	parsed.RawQuery = ""
	parsed.ForceQuery = false
	parsed.Fragment = ""
	return parsed.String()
}

// AnonymizeURL reduces a URL to a stable hash of its scheme, host category and
// port. Two URLs pointing at the same kind of endpoint hash identically.
func AnonymizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		hash := sha256.Sum256([]byte(rawURL))
		return fmt.Sprintf("url-hash-%x", hash[:8])
	}

	var parts []string
	if parsed.Scheme != "" {
		parts = append(parts, parsed.Scheme)
	}
	if host := parsed.Hostname(); host != "" {
		parts = append(parts, categorizeHost(host))
	}
	if port := parsed.Port(); port != "" {
		parts = append(parts, "port-"+port)
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("url-%x", hash[:12])
}

// categorizeHost keeps only the kind of host: loopback, private, public IP or TLD.
func categorizeHost(host string) string {
	switch {
	case host == "localhost" || host == "127.0.0.1" || host == "::1":
		return "localhost"
	case isPrivateIP(host):
		return "private-ip"
	case ipv4Pattern.MatchString(host) || strings.Contains(host, ":"):
		return "public-ip"
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return "domain-" + parts[len(parts)-1]
	}
	return "unknown-host"
}

func isPrivateIP(host string) bool {
	privateRanges := []string{
		"10.", "192.168.", "169.254.",
		"172.16.", "172.17.", "172.18.", "172.19.", "172.20.", "172.21.", "172.22.", "172.23.",
		"172.24.", "172.25.", "172.26.", "172.27.", "172.28.", "172.29.", "172.30.", "172.31.",
		"fc00:", "fd00:", "fe80:",
	}

	host = strings.ToLower(host)
	for _, prefix := range privateRanges {
		if strings.HasPrefix(host, prefix) {
			return true
		}
	}
	return false
}
