package auth

import (
	"fmt"
	"regexp"
	"strings"
)

var apiKeyPattern = regexp.MustCompile(
	`^[A-F0-9]{8}-([A-F0-9]{4}-){3}[A-F0-9]{20}-([A-F0-9]{4}-){3}[A-F0-9]{12}$`,
)

// InvalidKeyError reports a token or permission set that cannot form an APIKey.
type InvalidKeyError struct {
	Token  string
	Reason string
}

func (e *InvalidKeyError) Error() string {
	if e.Token == "" {
		return "invalid api key: " + e.Reason
	}
	return fmt.Sprintf("invalid api key %q: %s", e.Token, e.Reason)
}

// APIKey is a validated API key token and the permissions it holds.
type APIKey struct {
	token       string
	permissions PermissionSet
}

// NewAPIKey validates token and perms. Without perms the key is assumed to hold
// every permission; when given, perms must include MinimalPermissions.
func NewAPIKey(token string, perms ...Permission) (*APIKey, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &InvalidKeyError{Reason: "the token cannot be empty"}
	}
	if !apiKeyPattern.MatchString(token) {
		return nil, &InvalidKeyError{Token: token, Reason: "the token does not match the expected format"}
	}

	set := AllPermissions()
	if len(perms) > 0 {
		set = NewPermissionSet(perms...)
		if !set.ContainsAll(MinimalPermissions()) {
			return nil, &InvalidKeyError{Token: token, Reason: "the permissions do not contain the minimal permissions"}
		}
	}
	return &APIKey{token: token, permissions: set}, nil
}

// Token returns the raw token.
func (k *APIKey) Token() string { return k.token }

// Permissions returns a copy of the key's permissions.
func (k *APIKey) Permissions() PermissionSet {
	out := make(PermissionSet, len(k.permissions))
	for p := range k.permissions {
		out[p] = struct{}{}
	}
	return out
}

// Allows reports whether the key holds every permission in required.
func (k *APIKey) Allows(required ...Permission) bool {
	return k.permissions.ContainsAll(NewPermissionSet(required...))
}

// String hides most of the token so keys can be logged.
func (k *APIKey) String() string {
	if len(k.token) < 8 {
		return "****"
	}
	return k.token[:8] + "-****"
}
