// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Package client provides a minimal CoAP-over-UDP client. The server side
// uses it as the per-datagram peer responder; tests and tools use it as a
// plain request client.
package client

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"trpc.group/trpc-go/tcoap/message"
)

const defaultReadBufferSize = 1500

// Client sends CoAP messages to a single peer over an unconnected UDP
// socket. The socket is unconnected so that replies emitted from a
// responder socket other than the peer's listening socket are still
// delivered, which is how per-datagram responders answer.
//
// A Client is not safe for concurrent use.
type Client struct {
	conn    *net.UDPConn
	peer    *net.UDPAddr
	timeout time.Duration
}

// Dial resolves address (first candidate only) and returns a Client
// bound to an ephemeral local port.
func Dial(address string) (*Client, error) {
	peer, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, errors.Wrap(err, "client: resolve peer address")
	}
	return New(peer)
}

// New returns a Client for an already resolved peer address.
func New(peer *net.UDPAddr) (*Client, error) {
	if peer == nil {
		return nil, errors.New("client: nil peer address")
	}
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, errors.Wrap(err, "client: open socket")
	}
	return &Client{conn: conn, peer: peer}, nil
}

// SetTimeout sets the deadline applied to subsequent Receive calls.
// Zero means block indefinitely.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// RemoteAddr returns the peer address messages are sent to.
func (c *Client) RemoteAddr() net.Addr {
	return c.peer
}

// LocalAddr returns the local socket address.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Send encodes m and sends it to the peer.
func (c *Client) Send(m *message.Message) error {
	data, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "client: encode message")
	}
	if _, err := c.conn.WriteToUDP(data, c.peer); err != nil {
		return errors.Wrap(err, "client: send message")
	}
	return nil
}

// Receive blocks for the next datagram and decodes it. The source
// address is not checked against the peer, see the Client doc.
func (c *Client) Receive() (*message.Message, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, errors.Wrap(err, "client: set read deadline")
		}
	}
	buf := make([]byte, defaultReadBufferSize)
	n, _, err := c.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, errors.Wrap(err, "client: receive message")
	}
	m, err := message.Unmarshal(buf[:n])
	if err != nil {
		return nil, errors.Wrap(err, "client: decode message")
	}
	return m, nil
}

// Reply answers req with a 2.05 Content response carrying payload.
// Confirmable requests are acknowledged piggybacked (ACK, same message
// id); non-confirmable requests get a non-confirmable response. The
// request token is echoed so the peer can match the exchange.
func (c *Client) Reply(req *message.Message, payload []byte) error {
	rsp := message.New()
	rsp.Type = message.NonConfirmable
	if req.Type == message.Confirmable {
		rsp.Type = message.Acknowledgement
	}
	rsp.Code = message.CodeContent
	rsp.MessageID = req.MessageID
	if err := rsp.SetToken(req.Token); err != nil {
		return errors.Wrap(err, "client: reply token")
	}
	rsp.Payload = payload
	return c.Send(rsp)
}

// Close releases the client socket.
func (c *Client) Close() error {
	return c.conn.Close()
}
