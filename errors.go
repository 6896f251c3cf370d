// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package tcoap

import "github.com/pkg/errors"

var (
	// ErrAlreadyRunning is returned by Start while another run is active.
	ErrAlreadyRunning = errors.New("tcoap: another handler is already running")

	// ErrEventLoop is returned by Start when the reactor goroutine exits
	// before confirming that the socket is being polled.
	ErrEventLoop = errors.New("tcoap: reactor failed to start")
)

// NetworkError reports an address resolution, bind or socket duplication
// failure in the lifecycle API.
type NetworkError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *NetworkError) Error() string {
	return "tcoap: network error on " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error { return e.Err }
