// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Package metrics counts what the dispatch engine does at runtime: how
// many datagrams arrived, how many failed to decode, how many tasks the
// worker pool took or refused. The counters are cheap enough to stay on
// in production and are the primary tool for diagnosing silent drops.
package metrics

import (
	"time"

	"go.uber.org/atomic"
	"trpc.group/trpc-go/tcoap/log"
)

// All metrics definitions.
const (
	// PacketsReceived counts datagrams read off the socket by the reactor.
	PacketsReceived = iota
	// ReadFails counts fatal socket read errors, deadline expiry excluded.
	ReadFails
	// TasksSubmitted counts work units accepted by the worker pool.
	TasksSubmitted
	// TasksDropped counts work units refused by the pool under the reject
	// overload policy.
	TasksDropped
	// DecodeFails counts datagrams the codec rejected.
	DecodeFails
	// ResponderFails counts work units dropped because the peer responder
	// could not be constructed.
	ResponderFails
	// HandlerCalls counts handler invocations.
	HandlerCalls

	// Keep it last.

	Max
)

var metrics [Max]atomic.Uint64

var names = [Max]string{
	PacketsReceived: "datagrams received",
	ReadFails:       "fatal socket read errors",
	TasksSubmitted:  "tasks submitted to the worker pool",
	TasksDropped:    "tasks refused by the worker pool",
	DecodeFails:     "datagrams failed to decode",
	ResponderFails:  "responder construction failures",
	HandlerCalls:    "handler invocations",
}

// Add metrics counter.
func Add(name int, delta uint64) {
	if name < 0 || name >= Max {
		return
	}
	metrics[name].Add(delta)
}

// Get one metric counter.
func Get(name int) uint64 {
	if name < 0 || name >= Max {
		return 0
	}
	return metrics[name].Load()
}

// GetAll get all metrics.
func GetAll() [Max]uint64 {
	var m [Max]uint64
	for i := range metrics {
		m[i] = metrics[i].Load()
	}
	return m
}

// ShowMetricsOfPeriod shows metric info of duration d from now on.
// It will block d duration, and then prints metrics info.
func ShowMetricsOfPeriod(d time.Duration) {
	old := GetAll()
	<-time.After(d)
	cur := GetAll()
	var m [Max]uint64
	for i := range metrics {
		m[i] = cur[i] - old[i]
	}
	showAll(m)
}

// ShowMetrics shows metric info in console.
func ShowMetrics() {
	showAll(GetAll())
}

func showAll(m [Max]uint64) {
	log.Debug("######### tcoap metrics (", time.Now().Format("2006-01-02 15:04:05"), ") ###########")
	for i := 0; i < Max; i++ {
		log.Debugf("%-45s: %d", "# "+names[i], m[i])
	}
}
