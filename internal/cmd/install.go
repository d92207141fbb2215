package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Install registers PhonePad as a system service that starts at boot.
type Install struct {
	Args []string `arg:"" optional:"" help:"Extra arguments passed to 'phonepad server' by the service"`
}

func (i *Install) Run(logger *slog.Logger) error {
	return install(i.Args, logger)
}

// Uninstall removes the system service.
type Uninstall struct{}

func (u *Uninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}
