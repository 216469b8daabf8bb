package main

import (
	"go.uber.org/zap"

	"github.com/septivank/mill-analytics-worker/internal/config"
	"github.com/septivank/mill-analytics-worker/internal/logging"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.ServiceName)
}
