// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package tcoap

import (
	"net"
	"sync"

	"github.com/pkg/errors"
	"trpc.group/trpc-go/tcoap/internal/locker"
	"trpc.group/trpc-go/tcoap/internal/netutil"
	"trpc.group/trpc-go/tcoap/log"
)

// Server owns a bound UDP socket and runs at most one reactor over it at
// a time. The socket survives Stop, so a stopped server can be started
// again; Close releases it for good.
//
// Start and Stop are safe for concurrent use.
type Server struct {
	conn *net.UDPConn
	opts options

	// slot is the single run slot: claimed by Start, released when the
	// run's reactor has fully exited.
	slot locker.Locker

	mu  sync.Mutex // guards run and workers
	run *reactor

	workers int

	closeOnce sync.Once
	closeErr  error
}

// NewServer resolves address (first candidate only), binds a UDP socket
// on it and returns an idle server. No goroutines are started until
// Start. Resolution and bind failures are reported as *NetworkError.
func NewServer(address string, opt ...Option) (*Server, error) {
	var opts options
	opts.setDefault()
	for _, o := range opt {
		o.f(&opts)
	}
	conn, err := netutil.ListenUDP("udp", address, opts.reuseport)
	if err != nil {
		return nil, &NetworkError{Op: "bind", Err: err}
	}
	return &Server{conn: conn, opts: opts, workers: opts.workers}, nil
}

// Addr returns the bound socket address. Useful when the server was
// created on port 0.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// SetWorkerCount sets the worker pool size used by the next Start. It
// has no effect on a run that is already active.
func (s *Server) SetWorkerCount(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.workers = n
	s.mu.Unlock()
}

// Start spawns the reactor goroutine for handler and blocks until the
// reactor confirms that the socket is being polled, so traffic sent
// right after Start returns is observed. It fails with ErrAlreadyRunning
// while another run is active, with *NetworkError when the socket handle
// cannot be duplicated, and with ErrEventLoop when the reactor exits
// before confirming.
func (s *Server) Start(handler Handler) error {
	if handler == nil {
		return errors.New("tcoap: nil handler")
	}
	if !s.slot.TryLock() {
		return ErrAlreadyRunning
	}

	dup, err := netutil.DupUDPConn(s.conn)
	if err != nil {
		s.slot.Unlock()
		return &NetworkError{Op: "socket duplication", Err: err}
	}

	s.mu.Lock()
	opts := s.opts
	opts.workers = s.workers
	r := newReactor(dup, handler, opts)
	r.onExit = s.reactorExited
	s.run = r
	s.mu.Unlock()

	ready := make(chan struct{})
	go r.run(ready)

	select {
	case <-ready:
		log.Infof("tcoap: server on %s started, %d workers", s.Addr(), opts.workers)
		return nil
	case <-r.done:
		// The reactor exited before arming the socket; the running-handle
		// is already cleared.
		return ErrEventLoop
	}
}

// reactorExited clears the running-handle of r and frees the run slot.
// It is called exactly once per run, from the reactor goroutine, before
// the reactor's done channel is closed.
func (s *Server) reactorExited(r *reactor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == r {
		s.run = nil
		s.slot.Unlock()
	}
}

// Stop delivers the shutdown token to the active run and waits for the
// reactor goroutine to exit. It does not wait for in-flight worker
// tasks, which may still be finishing when Stop returns. Stop is
// idempotent: with no active run it returns immediately.
func (s *Server) Stop() {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()
	if r == nil {
		return
	}
	r.shutdown()
	<-r.done
	log.Infof("tcoap: server on %s stopped", s.Addr())
}

// Close stops the active run, if any, and releases the bound socket.
// The server cannot be started again afterwards; the address is free
// for rebinding once Close returns.
func (s *Server) Close() error {
	s.Stop()
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
