package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AccountClaims struct {
	jwt.RegisteredClaims
	AccountID int64
}

func GenerateAccountJWT(accountID int64, expire time.Duration, key []byte) (string, error) {
	accountClaims := AccountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
		},
		AccountID: accountID,
	}
	token, err := generateJWT(accountClaims, key)
	if err != nil {
		return "", fmt.Errorf("generating account jwt token: %s", err.Error())
	}
	return token, nil
}

func ValidateAccountJWT(tokenString string, key []byte) (*jwt.Token, error) {
	token, err := validateJWT(tokenString, new(AccountClaims), key)
	if err != nil {
		return nil, fmt.Errorf("validating account jwt token: %w", err)
	}

	_, ok := token.Claims.(*AccountClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return token, nil
}

func generateJWT(claims jwt.Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating jwt token: %s", err.Error())
	}

	return tokenString, nil
}

func validateJWT(tokenString string, claims jwt.Claims, key []byte) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parsing jwt token: %w", err)
	}

	return token, nil
}
