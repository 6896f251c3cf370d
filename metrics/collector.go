// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package metrics

import "github.com/prometheus/client_golang/prometheus"

var promNames = [Max]string{
	PacketsReceived: "tcoap_packets_received_total",
	ReadFails:       "tcoap_read_failures_total",
	TasksSubmitted:  "tcoap_tasks_submitted_total",
	TasksDropped:    "tcoap_tasks_dropped_total",
	DecodeFails:     "tcoap_decode_failures_total",
	ResponderFails:  "tcoap_responder_failures_total",
	HandlerCalls:    "tcoap_handler_calls_total",
}

// Collector exposes the dispatch counters as prometheus metrics.
// Register it with a prometheus registry to scrape them:
//
//	prometheus.MustRegister(metrics.NewCollector())
type Collector struct {
	descs [Max]*prometheus.Desc
}

// NewCollector creates a Collector over the package counters.
func NewCollector() *Collector {
	c := &Collector{}
	for i := 0; i < Max; i++ {
		c.descs[i] = prometheus.NewDesc(promNames[i], names[i], nil, nil)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for i, d := range c.descs {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(Get(i)))
	}
}
