package authclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DecodeToken parses the three-segment token without verifying its signature.
// The client only needs the embedded claims for expiry bookkeeping; signature
// verification is the backend's job. Any malformed input (wrong segment
// count, invalid base64, invalid claim structure) yields ErrTokenMalformed.
func DecodeToken(token string) (*TokenClaims, error) {
	if token == "" {
		return nil, ErrTokenMalformed
	}

	claims := &TokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	return claims, nil
}

// IsExpired reports whether the token is past its expiry. Fail-closed: a
// token that cannot be decoded, or that carries no exp claim, counts as
// expired.
func IsExpired(token string) bool {
	return IsExpiredAt(token, time.Now())
}

// IsExpiredAt is IsExpired against an explicit clock.
func IsExpiredAt(token string, now time.Time) bool {
	claims, err := DecodeToken(token)
	if err != nil {
		return true
	}

	if !claims.HasExpiry() {
		return true
	}

	return !now.Before(claims.Expires())
}

// IsExpiringSoon reports whether the token expires within the threshold.
// Fail-open: a token that cannot be decoded returns false, so unparseable
// tokens never trigger a warning. This deliberately diverges from
// IsExpired's fail-closed policy; callers consult the two independently.
func IsExpiringSoon(token string, threshold time.Duration) bool {
	return IsExpiringSoonAt(token, threshold, time.Now())
}

// IsExpiringSoonAt is IsExpiringSoon against an explicit clock. True iff
// 0 < exp-now <= threshold; false at exactly now == exp and beyond.
func IsExpiringSoonAt(token string, threshold time.Duration, now time.Time) bool {
	claims, err := DecodeToken(token)
	if err != nil {
		return false
	}

	if !claims.HasExpiry() {
		return false
	}

	remaining := claims.Expires().Sub(now)
	return remaining > 0 && remaining <= threshold
}
