package logger

import "strings"

// RedactSecret masks a credential for safe logging, keeping only a short
// prefix so different keys remain distinguishable.
// "pat-na1-4f2c09..." → "pat-***"
func RedactSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 6 {
		return "***"
	}
	return secret[:4] + "***"
}

var secretKeyHints = []string{"key", "token", "secret", "password", "authorization"}

func redactSecretValue(key, val string) string {
	key = strings.ToLower(key)
	for _, hint := range secretKeyHints {
		if strings.Contains(key, hint) {
			return RedactSecret(val)
		}
	}
	return val
}
