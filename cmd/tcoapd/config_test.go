// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tcoapd.yaml")
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: "127.0.0.1:5683"
  workers: 8
  max_packet_size: 2048
  reuse_port: true
  overload: reject
admin:
  enabled: true
  listen: "127.0.0.1:9100"
logging:
  level: debug
resources:
  hello: "hello world"
  status: "ok"
`)
	cfg, err := LoadConfig(path)
	require.Nil(t, err)
	assert.Equal(t, "127.0.0.1:5683", cfg.Server.Listen)
	assert.Equal(t, 8, cfg.Server.Workers)
	assert.Equal(t, 2048, cfg.Server.MaxPacketSize)
	assert.True(t, cfg.Server.ReusePort)
	assert.Equal(t, "reject", cfg.Server.Overload)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, "127.0.0.1:9100", cfg.Admin.Listen)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "hello world", cfg.Resources["hello"])
	assert.Equal(t, "ok", cfg.Resources["status"])
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: ":5683"
`)
	cfg, err := LoadConfig(path)
	require.Nil(t, err)
	assert.Equal(t, 0, cfg.Server.Workers)
	assert.False(t, cfg.Admin.Enabled)
	assert.Equal(t, "", cfg.Logging.Level)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing listen", `
server:
  workers: 4
`},
		{"negative workers", `
server:
  listen: ":5683"
  workers: -1
`},
		{"bad overload", `
server:
  listen: ":5683"
  overload: panic
`},
		{"admin without listen", `
server:
  listen: ":5683"
admin:
  enabled: true
`},
		{"bad log level", `
server:
  listen: ":5683"
logging:
  level: verbose
`},
		{"malformed yaml", `server: [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.NotNil(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.NotNil(t, err)
}
