package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/grossamos/throwscape/application/components/logging"
	appconsts "github.com/grossamos/throwscape/application/consts"
	"github.com/grossamos/throwscape/application/core"
	"github.com/grossamos/throwscape/internal/config"
	"github.com/grossamos/throwscape/internal/consts"
	"github.com/grossamos/throwscape/internal/metrics"
	"github.com/grossamos/throwscape/internal/scheduler"
)

// Submitter accepts jobs without blocking on worker availability.
type Submitter interface {
	Submit(job scheduler.Job) error
}

// StaticServer owns the listening socket and hands every accepted connection to the pool.
type StaticServer struct {
	*core.BaseComponent

	cfg     *config.Config
	pool    Submitter
	handler *ConnHandler
	metrics *metrics.ServerMetrics

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

// NewStaticServer creates the component. m may be nil.
func NewStaticServer(cfg *config.Config, pool Submitter, m *metrics.ServerMetrics) *StaticServer {
	return &StaticServer{
		BaseComponent: core.NewBaseComponent(consts.COMP_SVC_STATIC_SERVER,
			consts.COMP_SVC_WORKER_POOL, appconsts.COMPONENT_LOGGING, appconsts.COMPONENT_TELEMETRY),
		cfg:     cfg,
		pool:    pool,
		handler: NewConnHandler(m),
		metrics: m,
	}
}

func (s *StaticServer) Start(ctx context.Context) error {
	if s.IsActive() {
		return nil
	}
	if !s.cfg.Finalized() {
		if err := s.cfg.Finalize(); err != nil {
			return err
		}
	}
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Address(), err)
	}

	s.mu.Lock()
	s.listener = ln
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.acceptLoop(ln, s.done)
	logging.Info(ctx, "static server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("root", s.cfg.ServeRoot()),
		zap.Int("workers", s.cfg.Workers))
	return s.BaseComponent.Start(ctx)
}

// Addr is the bound address, useful with port 0 in tests.
func (s *StaticServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *StaticServer) acceptLoop(ln net.Listener, done chan struct{}) {
	defer close(done)
	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.metrics.AcceptError()
			// 与 net/http 相同的退避策略，避免 accept 失败时空转
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			logging.Warn(context.Background(), "accept failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		s.metrics.Accepted()

		if err := s.pool.Submit(func(cfg *config.Config) {
			s.handler.ServeConn(context.Background(), conn, cfg)
		}); err != nil {
			logging.Error(context.Background(), "submit connection failed", zap.Error(err))
			_ = conn.Close()
		}
	}
}

// Stop closes the listener and waits for the accept loop to exit. Connections already
// handed to the pool are served to completion by their workers.
func (s *StaticServer) Stop(ctx context.Context) error {
	defer s.BaseComponent.Stop(ctx)
	s.mu.Lock()
	ln, done := s.listener, s.done
	s.listener = nil
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	if err := ln.Close(); err != nil {
		return fmt.Errorf("close listener: %w", err)
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	logging.Info(ctx, "static server stopped")
	return nil
}

func (s *StaticServer) HealthCheck() error {
	if err := s.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if s.Addr() == "" {
		return errors.New("listener closed")
	}
	return nil
}
