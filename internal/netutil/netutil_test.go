// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package netutil_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/tcoap/internal/netutil"
)

func TestResolveUDPAddr(t *testing.T) {
	addr, err := netutil.ResolveUDPAddr("udp", "127.0.0.1:5683")
	require.Nil(t, err)
	assert.Equal(t, 5683, addr.Port)

	_, err = netutil.ResolveUDPAddr("udp", "no-such-host.invalid:5683")
	assert.NotNil(t, err)
}

func TestListenUDP(t *testing.T) {
	conn, err := netutil.ListenUDP("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	defer conn.Close()
	assert.Equal(t, "udp", conn.LocalAddr().Network())
}

func TestListenUDPReuseport(t *testing.T) {
	conn, err := netutil.ListenUDP("udp", "127.0.0.1:0", true)
	require.Nil(t, err)
	defer conn.Close()

	// A second socket may bind the very same address.
	conn2, err := netutil.ListenUDP("udp", conn.LocalAddr().String(), true)
	require.Nil(t, err)
	conn2.Close()
}

func TestDupUDPConn(t *testing.T) {
	conn, err := netutil.ListenUDP("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	defer conn.Close()

	dup, err := netutil.DupUDPConn(conn)
	require.Nil(t, err)
	assert.Equal(t, conn.LocalAddr().String(), dup.LocalAddr().String())

	send := func(payload string) {
		c, err := net.Dial("udp", conn.LocalAddr().String())
		require.Nil(t, err)
		defer c.Close()
		_, err = c.Write([]byte(payload))
		require.Nil(t, err)
	}

	// The duplicate reads datagrams sent to the shared port.
	send("via-dup")
	buf := make([]byte, 64)
	require.Nil(t, dup.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := dup.ReadFromUDP(buf)
	require.Nil(t, err)
	assert.Equal(t, "via-dup", string(buf[:n]))

	// Closing the duplicate must not tear down the original handle.
	require.Nil(t, dup.Close())
	send("via-original")
	require.Nil(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err = conn.ReadFromUDP(buf)
	require.Nil(t, err)
	assert.Equal(t, "via-original", string(buf[:n]))
}

func TestDupClosedConn(t *testing.T) {
	conn, err := netutil.ListenUDP("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	require.Nil(t, conn.Close())

	_, err = netutil.DupUDPConn(conn)
	assert.NotNil(t, err)
}
