package pinning

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenExpiry reads the exp claim of a Pinata JWT without verifying its
// signature. ok is false when the token carries no expiry.
func TokenExpiry(token string) (exp time.Time, ok bool, err error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("parse pinata jwt: %w", err)
	}
	raw, present := claims["exp"]
	if !present {
		return time.Time{}, false, nil
	}
	switch v := raw.(type) {
	case float64:
		return time.Unix(int64(v), 0), true, nil
	default:
		return time.Time{}, false, errors.New("parse pinata jwt: exp is not numeric")
	}
}
