// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Package tcoap provides the request-dispatch engine of a CoAP-over-UDP
// server: a reactor goroutine reads datagrams off a bound socket and a
// fixed worker pool decodes them and hands them to a user handler, which
// can answer through a per-datagram responder.
package tcoap

import (
	"net"

	"trpc.group/trpc-go/tcoap/message"
)

// Handler handles one decoded request. The engine invokes Handle from
// multiple worker goroutines concurrently, so implementations must be
// safe for concurrent use; a handler that keeps mutable state owns its
// own synchronization. The response writer is only valid for the
// duration of the call.
type Handler interface {
	Handle(req *message.Message, w ResponseWriter)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(req *message.Message, w ResponseWriter)

// Handle calls f(req, w).
func (f HandlerFunc) Handle(req *message.Message, w ResponseWriter) {
	f(req, w)
}

// ResponseWriter is the capability to answer the peer a request came
// from. Send and Reply surface network errors to the handler; the
// dispatch engine never inspects them.
type ResponseWriter interface {
	// Reply answers req with a 2.05 Content response carrying payload,
	// echoing the request token and message id.
	Reply(req *message.Message, payload []byte) error

	// Send sends an arbitrary message to the peer.
	Send(m *message.Message) error

	// RemoteAddr returns the peer address.
	RemoteAddr() net.Addr
}
