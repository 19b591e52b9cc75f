package store_test

import (
	"io"
	"log/slog"

	"github.com/bookhavenapp/bookhaven-server/internal/logger"
)

func testCartLogger() *logger.Logger {
	return logger.New(logger.Config{Writer: io.Discard, Level: slog.LevelError})
}
