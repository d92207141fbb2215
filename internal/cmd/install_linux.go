//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	serviceName = "phonepad.service"
	servicePath = "/etc/systemd/system/phonepad.service"
)

func install(args []string, logger *slog.Logger) error {
	exePath, err := currentExecutable()
	if err != nil {
		return err
	}

	unit := systemdUnitContent(exePath, args)
	if err := os.WriteFile(servicePath, []byte(unit), 0o644); err != nil {
		return err
	}

	for _, step := range [][]string{
		{"daemon-reload"},
		{"enable", serviceName},
		{"restart", serviceName},
	} {
		if err := runSystemctl(step...); err != nil {
			return err
		}
	}

	logger.Info("PhonePad systemd service installed", "path", servicePath, "exe", exePath)
	return nil
}

func uninstall(logger *slog.Logger) error {
	var errs []error

	for _, step := range [][]string{{"stop", serviceName}, {"disable", serviceName}} {
		if err := runSystemctl(step...); err != nil {
			errs = append(errs, err)
		}
	}
	if err := os.Remove(servicePath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	if err := runSystemctl("daemon-reload"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logger.Info("PhonePad systemd service removed", "path", servicePath)
	return nil
}

// systemdUnitContent renders the unit. The uinput module is loaded first so
// the default backend can open /dev/uinput right away.
func systemdUnitContent(exePath string, args []string) string {
	cmdline := strconv.Quote(exePath) + " server"
	for _, a := range args {
		cmdline += " " + strconv.Quote(a)
	}
	return fmt.Sprintf(`[Unit]
Description=PhonePad virtual gamepad server
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStartPre=-/sbin/modprobe uinput
ExecStart=%s
WorkingDirectory=%s
Restart=on-failure

[Install]
WantedBy=multi-user.target
`, cmdline, filepath.Dir(exePath))
}

func runSystemctl(args ...string) error {
	output, err := exec.Command("systemctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
