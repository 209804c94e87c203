package chatconnect

// Credentials is the resolved credential bundle a connector operates under.
// It is a capability token: the values are used to sign requests and must
// never appear in log output in cleartext.
type Credentials struct {
	AccessKey string
	SecretKey string
	Region    string
}

// IsComplete returns true when all three fields are non-empty. A connector
// is configured iff its credentials are complete.
func (c Credentials) IsComplete() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.Region != ""
}

// Redacted returns a copy safe for log fields: key material is masked, the
// region (not a secret) is kept.
func (c Credentials) Redacted() map[string]interface{} {
	return map[string]interface{}{
		"access_key": maskSecret(c.AccessKey),
		"secret_key": maskSecret(c.SecretKey),
		"region":     c.Region,
	}
}

// maskSecret keeps the first four characters of a secret for correlation and
// masks the rest. Short values are fully masked.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
