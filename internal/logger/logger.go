package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New инициализирует логгер.
func New(output io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetFormatter(new(logrus.JSONFormatter))
	l.SetLevel(logrus.InfoLevel)

	// перезаписываем ряд настроек для окружений отличных от продакшн
	if os.Getenv("GIN_MODE") != "release" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(new(logrus.TextFormatter))
	}

	return l
}

// WithComponent возвращает entry с полем component. Компоненты кошелька (сервисы, воркеры)
// логируют только через такие entry, чтобы по логам было видно источник.
func WithComponent(l *logrus.Logger, component string) *logrus.Entry {
	return l.WithField("component", component)
}
