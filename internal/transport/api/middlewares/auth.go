package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/debdutta777/noobwriter-wallet/internal/transport/api/tokens"
)

var ErrTokenNotExist = errors.New("token not exist")

const CurrentAccountIDKey = "currentAccountID"

// checkAuthorization извлекает токен из заголовка Authorization и проверяет его.
// Если токен не передан, вернется ошибка ErrTokenNotExist.
func checkAuthorization(c *gin.Context, jwtTokenSecret []byte) (*jwt.Token, error) {
	tokenHeader := c.GetHeader("Authorization")
	bearer := "Bearer "

	if len(tokenHeader) < len(bearer) || tokenHeader[:len(bearer)] != bearer {
		return nil, ErrTokenNotExist
	}

	tokenStr := tokenHeader[len(bearer):]
	token, err := tokens.ValidateAccountJWT(tokenStr, jwtTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("check authorization: %w", err)
	}
	return token, nil
}

// AuthRequired проверяет, что запрос авторизован. Записывает в контекст
// (поле CurrentAccountIDKey) id аккаунта.
func AuthRequired(jwtTokenSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := checkAuthorization(c, jwtTokenSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			if !errors.Is(err, ErrTokenNotExist) {
				_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			}
			return
		}
		accountClaims, ok := token.Claims.(*tokens.AccountClaims)
		if !ok {
			_ = c.AbortWithError(http.StatusInternalServerError, errors.New("invalid jwt claims type")).
				SetType(gin.ErrorTypePrivate)
			return
		}
		c.Set(CurrentAccountIDKey, accountClaims.AccountID)
		c.Next()
	}
}
