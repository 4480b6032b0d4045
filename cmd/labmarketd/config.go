// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type config struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`

	// RulesPath points to a JSON rules override applied on top of the
	// defaults; empty runs with the defaults.
	RulesPath string `yaml:"rulesPath"`

	HTTP httpConfig `yaml:"http"`
	Log  logConfig  `yaml:"log"`
}

type httpConfig struct {
	ReadTimeout       time.Duration `yaml:"readTimeout"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	IdleTimeout       time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
}

type logConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
	// Rotation settings, lumberjack semantics.
	MaxSizeMB  int  `yaml:"maxSizeMB"`
	MaxAgeDays int  `yaml:"maxAgeDays"`
	MaxFiles   int  `yaml:"maxFiles"`
	Compress   bool `yaml:"compress"`
}

func defaultConfig() config {
	return config{
		Addr:           "127.0.0.1:9650",
		AllowedOrigins: []string{"*"},
		HTTP: httpConfig{
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log: logConfig{
			Level:      "info",
			Dir:        "logs",
			MaxSizeMB:  8,
			MaxAgeDays: 7,
			MaxFiles:   4,
		},
	}
}

// loadConfig parses a YAML config on top of the defaults.
func loadConfig(path string) (config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}
