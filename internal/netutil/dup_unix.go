// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package netutil

import (
	"net"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DupUDPConn duplicates the socket underlying conn and returns a new
// *net.UDPConn owning the duplicated descriptor. The two conns share the
// bound port but close independently, so the reactor can hold its own
// handle for the lifetime of a run while the controller keeps the
// original for later runs. Duplication fails when the process is out of
// descriptors or conn is already closed.
func DupUDPConn(conn *net.UDPConn) (*net.UDPConn, error) {
	sc, err := conn.SyscallConn()
	if err != nil {
		return nil, errors.Wrap(err, "raw conn of udp socket")
	}
	var (
		dupFD  int
		dupErr error
	)
	if err := sc.Control(func(fd uintptr) {
		dupFD, dupErr = unix.Dup(int(fd))
	}); err != nil {
		return nil, errors.Wrap(err, "control udp socket")
	}
	if dupErr != nil {
		return nil, errors.Wrap(dupErr, "dup udp socket")
	}
	f := os.NewFile(uintptr(dupFD), "udp")
	defer f.Close()
	pc, err := net.FilePacketConn(f)
	if err != nil {
		return nil, errors.Wrap(err, "packet conn from dup fd")
	}
	uc, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, errors.Errorf("dup conn is not a udp conn: %T", pc)
	}
	return uc, nil
}
