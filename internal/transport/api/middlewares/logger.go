package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger пишет access-лог по завершении запроса. Приватные ошибки хендлеров
// попадают в лог здесь, а не в тело ответа.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := l.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"size":     c.Writer.Size(),
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("request handled")
	}
}
