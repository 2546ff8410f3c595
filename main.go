package main

import (
	"allmeet-api/core/logger"
	"allmeet-api/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
