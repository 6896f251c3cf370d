// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Package locker provides locking utilities.
package locker

import "sync/atomic"

const (
	unlocked = 0
	locked   = 1
)

// A Locker is a CAS-based exclusion lock. The zero value for a Locker is
// unlocked. Unlike sync.Mutex, a locked Locker is not associated with a
// particular goroutine: the server claims the run slot in Start and the
// reactor goroutine or Stop releases it later.
type Locker uint32

// TryLock tries to lock l. If the locker is already held the calling
// goroutine does not block and directly gets false.
func (l *Locker) TryLock() bool {
	return atomic.CompareAndSwapUint32((*uint32)(l), unlocked, locked)
}

// Unlock unlocks l. It may be called from a goroutine other than the one
// that locked it.
func (l *Locker) Unlock() {
	atomic.StoreUint32((*uint32)(l), unlocked)
}

// IsLocked returns whether the locker is locked.
func (l *Locker) IsLocked() bool {
	return atomic.LoadUint32((*uint32)(l)) == locked
}
