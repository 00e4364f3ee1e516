// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package logging

import "strings"

// SanitizeToken keeps the first and last four characters of a token.
// Tokens of 12 characters or fewer are fully masked.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeAuthorization masks the credential in an Authorization header
// value, keeping the scheme.
func SanitizeAuthorization(header string) string {
	scheme, cred, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return SanitizeToken(header)
	}
	return scheme + " " + SanitizeToken(strings.TrimSpace(cred))
}

// SanitizeUserID shortens a listener id.
func SanitizeUserID(userID string) string {
	if userID == "" {
		return ""
	}
	if len(userID) <= 8 {
		return "***"
	}
	return userID[:4] + "..." + userID[len(userID)-4:]
}

// SanitizeEmail keeps the first two characters of the local part and the domain.
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

var sensitiveKeys = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"token":         true,
	"admin_token":   true,
	"authorization": true,
	"secret":        true,
	"client_secret": true,
}

// SanitizeValue masks value when key names a credential.
func SanitizeValue(key, value string) string {
	lower := strings.ToLower(key)
	switch {
	case lower == "authorization":
		return SanitizeAuthorization(value)
	case sensitiveKeys[lower]:
		return SanitizeToken(value)
	case lower == "email":
		return SanitizeEmail(value)
	default:
		return value
	}
}
