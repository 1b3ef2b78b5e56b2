package main

import (
	"videotube/internal/logger"
	"videotube/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		logger.NewLogger("server").Fatal().Err(err).Msg("server failed")
	}
}
