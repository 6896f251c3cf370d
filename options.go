// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package tcoap

import (
	"net"
	"time"
)

const (
	defaultWorkerCount   = 4
	defaultMaxPacketSize = 1500
	defaultPollInterval  = 100 * time.Millisecond
)

// OverloadPolicy decides what happens when a datagram is read while all
// workers are busy. The pool has no hidden queue: its capacity is the
// worker count.
type OverloadPolicy int

const (
	// OverloadBlock blocks the reactor until a worker frees up. Datagram
	// loss is then bounded by the kernel socket buffer.
	OverloadBlock OverloadPolicy = iota

	// OverloadReject drops the datagram and counts it.
	OverloadReject
)

// FaultHandler is notified when the reactor stops on a fatal socket read
// error. The server is back to idle by the time it is called.
type FaultHandler func(err error)

// DecodeErrorHandler is notified for every datagram dropped before it
// reached the handler, either because it failed to decode or because the
// peer responder could not be constructed. No response is sent for such
// datagrams.
type DecodeErrorHandler func(err error, peer net.Addr)

// Option tcoap server option.
type Option struct {
	f func(*options)
}

type options struct {
	workers       int
	maxPacketSize int
	pollInterval  time.Duration
	reuseport     bool
	overload      OverloadPolicy
	onFault       FaultHandler
	onDecodeError DecodeErrorHandler
}

func (o *options) setDefault() {
	o.workers = defaultWorkerCount
	o.maxPacketSize = defaultMaxPacketSize
	o.pollInterval = defaultPollInterval
}

// WithWorkerCount sets the worker pool size used by the next Start.
func WithWorkerCount(n int) Option {
	return Option{func(op *options) {
		if n > 0 {
			op.workers = n
		}
	}}
}

// WithMaxPacketSize sets the receive buffer allocated per datagram.
// Datagrams longer than the buffer are truncated by the socket and will
// normally be rejected by the codec.
func WithMaxPacketSize(size int) Option {
	return Option{func(op *options) {
		if size > 0 {
			op.maxPacketSize = size
		}
	}}
}

// WithPollInterval sets how long a single readability poll waits before
// the reactor rechecks the shutdown token. It bounds the worst case Stop
// latency; shutdown normally interrupts the poll immediately.
func WithPollInterval(d time.Duration) Option {
	return Option{func(op *options) {
		if d > 0 {
			op.pollInterval = d
		}
	}}
}

// WithReusePort binds the socket with SO_REUSEPORT.
func WithReusePort(reuse bool) Option {
	return Option{func(op *options) {
		op.reuseport = reuse
	}}
}

// WithOverloadPolicy sets the worker pool overload policy.
func WithOverloadPolicy(p OverloadPolicy) Option {
	return Option{func(op *options) {
		op.overload = p
	}}
}

// WithFaultHandler registers the FaultHandler called when the reactor
// stops on a socket error.
func WithFaultHandler(h FaultHandler) Option {
	return Option{func(op *options) {
		op.onFault = h
	}}
}

// WithDecodeErrorHandler registers the DecodeErrorHandler called for
// dropped datagrams.
func WithDecodeErrorHandler(h DecodeErrorHandler) Option {
	return Option{func(op *options) {
		op.onDecodeError = h
	}}
}
