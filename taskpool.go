// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package tcoap

import (
	"github.com/panjf2000/ants/v2"
)

// taskPool is the fixed-size worker pool of one run. It is created by the
// reactor goroutine at run start and released when the reactor exits; it
// is never shared across runs.
type taskPool struct {
	pool *ants.Pool
}

func newTaskPool(size int, overload OverloadPolicy) (*taskPool, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(overload == OverloadReject))
	if err != nil {
		return nil, err
	}
	return &taskPool{pool: pool}, nil
}

// submit hands a task to the pool. Under OverloadBlock it blocks the
// caller until a worker is free; under OverloadReject it returns an error
// when all workers are busy.
func (p *taskPool) submit(task func()) error {
	return p.pool.Submit(task)
}

// release shuts the pool down without waiting for in-flight tasks.
func (p *taskPool) release() {
	p.pool.Release()
}
