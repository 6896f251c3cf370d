// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package locker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"trpc.group/trpc-go/tcoap/internal/locker"
)

func TestTryLock(t *testing.T) {
	var l locker.Locker
	assert.False(t, l.IsLocked())
	assert.True(t, l.TryLock())
	assert.True(t, l.IsLocked())
	assert.False(t, l.TryLock())
	l.Unlock()
	assert.False(t, l.IsLocked())
	assert.True(t, l.TryLock())
}

func TestUnlockFromOtherGoroutine(t *testing.T) {
	var l locker.Locker
	assert.True(t, l.TryLock())
	done := make(chan struct{})
	go func() {
		l.Unlock()
		close(done)
	}()
	<-done
	assert.True(t, l.TryLock())
}
