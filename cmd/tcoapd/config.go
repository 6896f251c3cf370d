// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration.
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Admin     AdminConfig       `yaml:"admin"`
	Logging   LoggingConfig     `yaml:"logging"`
	Resources map[string]string `yaml:"resources"`
}

// ServerConfig configures the dispatch engine.
type ServerConfig struct {
	Listen        string `yaml:"listen"`
	Workers       int    `yaml:"workers"`
	MaxPacketSize int    `yaml:"max_packet_size"`
	ReusePort     bool   `yaml:"reuse_port"`
	Overload      string `yaml:"overload"`
}

// AdminConfig configures the HTTP admin endpoint serving prometheus
// metrics.
type AdminConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Admin.Validate(); err != nil {
		return fmt.Errorf("admin config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate checks the server section.
func (s *ServerConfig) Validate() error {
	if s.Listen == "" {
		return fmt.Errorf("listen cannot be empty")
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", s.Workers)
	}
	if s.MaxPacketSize < 0 {
		return fmt.Errorf("max_packet_size cannot be negative, got %d", s.MaxPacketSize)
	}
	switch s.Overload {
	case "", "block", "reject":
	default:
		return fmt.Errorf("overload must be 'block' or 'reject', got %q", s.Overload)
	}
	return nil
}

// Validate checks the admin section.
func (a *AdminConfig) Validate() error {
	if a.Enabled && a.Listen == "" {
		return fmt.Errorf("listen cannot be empty when admin is enabled")
	}
	return nil
}

// Validate checks the logging section.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("level must be one of [debug, info, warn, error], got %q", l.Level)
	}
}
