// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"path"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds a logger writing colored output to stderr and
// rotated JSON files under the configured directory.
func newLogger(c logConfig) (logging.Logger, error) {
	level, err := logging.ToLevel(c.Level)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, err
	}

	consoleCore := logging.NewWrappedCore(level, os.Stderr, logging.Colors.ConsoleEncoder())
	fileWriter := &lumberjack.Logger{
		Filename:   path.Join(c.Dir, "labmarketd.log"),
		MaxSize:    c.MaxSizeMB,
		MaxAge:     c.MaxAgeDays,
		MaxBackups: c.MaxFiles,
		Compress:   c.Compress,
	}
	fileCore := logging.NewWrappedCore(level, fileWriter, logging.JSON.FileEncoder())

	return logging.NewLogger("labmarketd", consoleCore, fileCore), nil
}
