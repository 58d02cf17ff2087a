// Package claims reads the identity claim from a bearer token's payload
// segment.
//
// The signature is NOT verified here. Callers must sit behind the bearer
// boundary (pkg/platform/middleware/auth), which either verifies the token
// itself or was explicitly configured to trust an upstream verifier.
package claims

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	dErrors "idgate/pkg/domain-errors"
)

// GuidClaim is the payload key binding a token to a profile record.
const GuidClaim = "Guid"

const bearerPrefix = "Bearer "

// IdentityClaims is the decoded payload segment.
type IdentityClaims map[string]any

var errMalformed = errors.New("malformed bearer token")

// ExtractGUID returns the Guid claim carried by a "Bearer <jwt>" header value.
// Every failure is reported as user not found.
func ExtractGUID(bearerHeaderValue string) (string, error) {
	claims, err := Decode(bearerHeaderValue)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUserNotFound, "guid not found")
	}

	guid, ok := claims[GuidClaim].(string)
	if !ok || guid == "" {
		return "", dErrors.New(dErrors.CodeUserNotFound, "guid not found")
	}
	return guid, nil
}

// Decode parses the payload segment of a bearer header value without
// verifying it.
func Decode(bearerHeaderValue string) (IdentityClaims, error) {
	if len(bearerHeaderValue) < len(bearerPrefix) {
		return nil, errMalformed
	}
	// the scheme marker is stripped by length, matching how clients send it
	token := bearerHeaderValue[len(bearerPrefix):]

	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", errMalformed, len(segments))
	}

	payload, err := decodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}

	var claims IdentityClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %v", errMalformed, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: empty payload", errMalformed)
	}
	return claims, nil
}

// decodeSegment accepts both base64 alphabets, padded or not. JWTs use raw
// URL-safe encoding; some clients send the standard alphabet.
func decodeSegment(seg string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.StdEncoding,
	}
	var firstErr error
	for _, enc := range encodings {
		out, err := enc.DecodeString(seg)
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
