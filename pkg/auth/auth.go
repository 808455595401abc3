package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// APIKeyHeader is the header carrying a RadioPlayer API key when key-based
// authentication is configured instead of basic auth.
const APIKeyHeader = "X-API-KEY"

// BasicAuthHeader builds an Authorization header value from a
// username/secret pair.
func BasicAuthHeader(username, secret string) string {
	credentials := username + ":" + secret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

// ValidateBasicAuth checks an incoming Authorization header against the
// expected credentials using constant-time comparison.
func ValidateBasicAuth(authHeader, expectedUsername, expectedSecret string) bool {
	if !strings.HasPrefix(authHeader, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, "Basic "))
	if err != nil {
		return false
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return false
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(parts[0]), []byte(expectedUsername)) == 1
	secretMatch := subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expectedSecret)) == 1

	return usernameMatch && secretMatch
}
