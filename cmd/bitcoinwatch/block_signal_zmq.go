//go:build zmq

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"
	"go.uber.org/zap"
)

// startBlockSignal subscribes to bitcoind's hashblock ZMQ feed and coalesces
// notifications into a single-slot channel. The poll loop stays authoritative;
// the signal only shortens its idle wait.
func startBlockSignal(ctx context.Context, addr string, logger *zap.Logger) (<-chan struct{}, error) {
	if addr == "" {
		return nil, nil
	}

	sock, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, fmt.Errorf("zmq socket: %w", err)
	}
	if err := sock.SetSubscribe("hashblock"); err != nil {
		sock.Close()
		return nil, fmt.Errorf("zmq subscribe: %w", err)
	}
	// Bounded recv so the listener notices context cancellation.
	if err := sock.SetRcvtimeo(time.Second); err != nil {
		sock.Close()
		return nil, fmt.Errorf("zmq rcvtimeo: %w", err)
	}
	if err := sock.Connect(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("zmq connect %s: %w", addr, err)
	}

	signal := make(chan struct{}, 1)
	go listenHashBlocks(ctx, sock, signal, logger.Named("zmq"))
	return signal, nil
}

func listenHashBlocks(ctx context.Context, sock *zmq4.Socket, signal chan<- struct{}, logger *zap.Logger) {
	defer sock.Close()

	for ctx.Err() == nil {
		parts, err := sock.RecvMessageBytes(0)
		if err != nil {
			if zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN) {
				continue
			}
			logger.Warn("recv failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(parts) < 2 {
			logger.Warn("skip malformed message", zap.Int("parts", len(parts)))
			continue
		}

		logger.Debug("hashblock", zap.String("hash", hex.EncodeToString(parts[1])))

		select {
		case signal <- struct{}{}:
		default:
		}
	}
}
