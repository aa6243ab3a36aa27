//go:build !zmq

package main

import (
	"context"

	"go.uber.org/zap"
)

// Without the zmq build tag the pipeline relies on polling alone.
func startBlockSignal(_ context.Context, addr string, logger *zap.Logger) (<-chan struct{}, error) {
	if addr != "" {
		logger.Warn("zmq-addr is set but the binary was built without the zmq tag, falling back to polling")
	}
	return nil, nil
}
