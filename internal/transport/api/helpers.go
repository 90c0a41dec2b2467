package api

import (
	"github.com/gin-gonic/gin"

	"github.com/debdutta777/noobwriter-wallet/internal/transport/api/middlewares"
)

// getAccountIDFromContext берет из контекста gin ID текущего аккаунта. ID устанавливается в
// middlewares.AuthRequired. В случае, если значения в контексте нет или ошибка утверждения
// типа - вернется 0.
func getAccountIDFromContext(c *gin.Context) int64 {
	accountIDVal, exist := c.Get(middlewares.CurrentAccountIDKey)
	if !exist {
		return 0
	}
	accountID, ok := accountIDVal.(int64)
	if !ok {
		return 0
	}
	return accountID
}
