package main

import (
	"net/http"
	"os"

	"stock-scan/config"
	"stock-scan/internal/devserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := cfg.NewLogger()

	router := devserver.NewRouter(devserver.DefaultDetections, logger)

	logger.Info("devserver listening", "addr", cfg.DevServerAddr)
	if err := http.ListenAndServe(cfg.DevServerAddr, router); err != nil {
		logger.Error("devserver stopped", "error", err)
		os.Exit(1)
	}
}
