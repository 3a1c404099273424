package logging

import "regexp"

// RedactedText replaces secrets found by the scrubbers below.
const RedactedText = "[REDACTED]"

// secretPatterns pairs each secret-bearing shape with its replacement.
// Applied in order; later patterns see the output of earlier ones.
var secretPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	// key=value passwords in keyword DSNs and the errors that echo them
	{regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`), "${1}=" + RedactedText},
	// user:pass@host credentials embedded in URL-style DSNs
	{regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`), "://" + RedactedText + "@" + RedactedText},
	// bearer tokens (three dot-separated base64url segments)
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`), "Bearer " + RedactedText},
}

func scrub(s string) string {
	for _, p := range secretPatterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}

// SanitizeConnectionString strips credentials from a DSN so the connection
// target can be logged at startup.
func SanitizeConnectionString(dsn string) string {
	return scrub(dsn)
}

// SanitizeError renders err for logging with embedded credentials and tokens
// removed. Database and auth errors routinely echo the DSN or header back.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return scrub(err.Error())
}

// TruncateString caps client-supplied strings (filenames, names) before they
// land in logs or history rows.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
