package utils

import (
	"io"

	"github.com/MrSnakeDoc/icebreaker/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup on error paths where the original error matters more.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a failure under what.
func CloseLogged(c io.Closer, what string, log logger.Logger) bool {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
		return false
	}
	return true
}
