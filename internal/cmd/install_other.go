//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
	"runtime"
)

var errInstallUnsupported = errors.New("service installation is only supported on linux (systemd), not " + runtime.GOOS)

func install(_ []string, _ *slog.Logger) error { return errInstallUnsupported }

func uninstall(_ *slog.Logger) error { return errInstallUnsupported }
