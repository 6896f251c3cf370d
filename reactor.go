// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package tcoap

import (
	"net"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"trpc.group/trpc-go/tcoap/client"
	"trpc.group/trpc-go/tcoap/log"
	"trpc.group/trpc-go/tcoap/message"
	"trpc.group/trpc-go/tcoap/metrics"
)

// workUnit is one captured datagram awaiting processing. Every read
// allocates a fresh buffer, so a unit is exclusively owned by the worker
// task that processes it.
type workUnit struct {
	data []byte
	peer *net.UDPAddr
}

// reactor is the single goroutine of a run that polls the socket. It
// owns a duplicate of the server's socket and the worker pool; both die
// with the reactor.
type reactor struct {
	conn    *net.UDPConn
	handler Handler
	opts    options
	pool    *taskPool

	cancel     chan struct{}
	cancelOnce sync.Once
	done       chan struct{}
	err        error

	// onExit clears the server's running-handle; it runs before done is
	// closed so that Stop observes an idle server once it returns.
	onExit func(*reactor)
}

func newReactor(conn *net.UDPConn, handler Handler, opts options) *reactor {
	return &reactor{
		conn:    conn,
		handler: handler,
		opts:    opts,
		cancel:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// run is the reactor goroutine body. It builds the worker pool, confirms
// over ready that the socket is being polled and then loops until the
// shutdown token arrives or a socket error occurs.
func (r *reactor) run(ready chan<- struct{}) {
	defer close(r.done)
	defer r.notifyFault()
	defer r.onExit(r)
	defer r.conn.Close()

	pool, err := newTaskPool(r.opts.workers, r.opts.overload)
	if err != nil {
		log.Errorf("tcoap: create worker pool: %v", err)
		return
	}
	r.pool = pool
	defer r.pool.release()

	close(ready)
	r.loop()
}

func (r *reactor) loop() {
	for {
		select {
		case <-r.cancel:
			return
		default:
		}
		if err := r.conn.SetReadDeadline(time.Now().Add(r.opts.pollInterval)); err != nil {
			r.fault(errors.Wrap(err, "arm readability poll"))
			return
		}
		buf := make([]byte, r.opts.maxPacketSize)
		n, peer, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				// No datagram within this poll.
				continue
			}
			metrics.Add(metrics.ReadFails, 1)
			r.fault(errors.Wrap(err, "read datagram"))
			return
		}
		metrics.Add(metrics.PacketsReceived, 1)
		unit := workUnit{data: buf[:n], peer: peer}
		if err := r.pool.submit(func() { r.process(unit) }); err != nil {
			metrics.Add(metrics.TasksDropped, 1)
			log.Debugf("tcoap: datagram from %s dropped, pool overloaded", peer)
			continue
		}
		metrics.Add(metrics.TasksSubmitted, 1)
	}
}

// process runs on a worker goroutine: decode, build the responder, call
// the handler. A datagram that fails before the handler is dropped
// without a response; the handler's own failures are its own business.
func (r *reactor) process(unit workUnit) {
	msg, err := message.Unmarshal(unit.data)
	if err != nil {
		metrics.Add(metrics.DecodeFails, 1)
		log.Debugf("tcoap: drop undecodable datagram from %s: %v", unit.peer, err)
		if r.opts.onDecodeError != nil {
			r.opts.onDecodeError(err, unit.peer)
		}
		return
	}
	responder, err := client.New(unit.peer)
	if err != nil {
		metrics.Add(metrics.ResponderFails, 1)
		log.Errorf("tcoap: drop datagram from %s, responder unavailable: %v", unit.peer, err)
		if r.opts.onDecodeError != nil {
			r.opts.onDecodeError(err, unit.peer)
		}
		return
	}
	defer responder.Close()
	metrics.Add(metrics.HandlerCalls, 1)
	r.handler.Handle(msg, responder)
}

// fault records a fatal socket error: the reactor stops and the server
// transitions back to idle, the process keeps running.
func (r *reactor) fault(err error) {
	if r.closed() {
		// Shutdown raced the error, treat it as a clean exit.
		return
	}
	log.Errorf("tcoap: reactor stopped: %v", err)
	r.err = err
}

// notifyFault runs after the running-handle is cleared, so the fault
// handler observes an idle server and may restart it.
func (r *reactor) notifyFault() {
	if r.err != nil && r.opts.onFault != nil {
		r.opts.onFault(r.err)
	}
}

// shutdown delivers the shutdown token and interrupts a poll in
// progress. Safe to call multiple times and from any goroutine.
func (r *reactor) shutdown() {
	r.cancelOnce.Do(func() {
		close(r.cancel)
		r.conn.SetReadDeadline(time.Now())
	})
}

func (r *reactor) closed() bool {
	select {
	case <-r.cancel:
		return true
	default:
		return false
	}
}
