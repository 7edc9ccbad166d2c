// =============================
// File: internal/app/shutdown.go
// =============================
package app

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CloseFunc allows using a function as an io.Closer.
type CloseFunc func() error

func (f CloseFunc) Close() error {
	return f()
}

// shutdownHandler closes registered services in reverse registration
// order, bounding the whole teardown with one timeout.
type shutdownHandler struct {
	logger   *zap.Logger
	timeout  time.Duration
	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name   string
	closer io.Closer
}

func newShutdownHandler(logger *zap.Logger, timeout time.Duration) *shutdownHandler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &shutdownHandler{logger: logger.Named("shutdown"), timeout: timeout}
}

func (sh *shutdownHandler) add(name string, closer io.Closer) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.services = append(sh.services, namedService{name: name, closer: closer})
}

func (sh *shutdownHandler) addFunc(name string, fn func() error) {
	sh.add(name, CloseFunc(fn))
}

// shutdown closes everything LIFO. Errors are logged, not returned;
// teardown always runs to completion or timeout.
func (sh *shutdownHandler) shutdown() {
	sh.mu.Lock()
	services := make([]namedService, len(sh.services))
	copy(services, sh.services)
	sh.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sh.timeout)
	defer cancel()

	sh.logger.Info("Shutting down", zap.Int("services", len(services)))

	for i := len(services) - 1; i >= 0; i-- {
		svc := services[i]

		done := make(chan error, 1)
		go func() {
			done <- svc.closer.Close()
		}()

		select {
		case err := <-done:
			if err != nil {
				sh.logger.Error("Service close failed",
					zap.String("service", svc.name),
					zap.Error(err))
			}
		case <-ctx.Done():
			sh.logger.Error("Shutdown timeout",
				zap.String("service", svc.name))
			return
		}
	}
}
