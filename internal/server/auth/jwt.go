// Package auth issues and verifies the HS256 access tokens used by the HTTP API.
package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tuvarna/devicebackend/internal/common"
)

// Claims carries the standard claims plus the numeric account id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64
}

// GenerateToken mints a signed access token for the given account.
func GenerateToken(userID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies the token's signature and expiry and returns
// the account id it was minted for. Any verification failure answers as an
// invalid token.
func GetUserIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return 0, common.WrapError(common.ErrInvalidToken, "invalid token", err)
	}

	if !token.Valid {
		return 0, common.NewError(common.ErrInvalidToken, "invalid token")
	}

	return claims.UserID, nil
}
