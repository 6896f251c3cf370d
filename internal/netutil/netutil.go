// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Package netutil provides socket helpers for the dispatch engine.
package netutil

import (
	"fmt"
	"net"

	goreuseport "github.com/kavu/go_reuseport"
	"github.com/pkg/errors"
)

// ResolveUDPAddr resolves address to a UDP address. Only the first
// resolved candidate is used; an address that resolves to nothing is an
// error.
func ResolveUDPAddr(network, address string) (*net.UDPAddr, error) {
	addr, err := net.ResolveUDPAddr(network, address)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s address %q", network, address)
	}
	return addr, nil
}

// ListenUDP binds a UDP socket on address. With reuseport the socket is
// created through SO_REUSEPORT so several processes can share the port.
func ListenUDP(network, address string, reuseport bool) (*net.UDPConn, error) {
	if !reuseport {
		addr, err := ResolveUDPAddr(network, address)
		if err != nil {
			return nil, err
		}
		conn, err := net.ListenUDP(network, addr)
		if err != nil {
			return nil, errors.Wrapf(err, "udp listen on %q", address)
		}
		return conn, nil
	}
	raw, err := goreuseport.ListenPacket(network, address)
	if err != nil {
		return nil, errors.Wrapf(err, "udp reuseport listen on %q", address)
	}
	conn, ok := raw.(*net.UDPConn)
	if !ok {
		raw.Close()
		return nil, fmt.Errorf("reuseport listener is not a udp conn: %T", raw)
	}
	return conn, nil
}
