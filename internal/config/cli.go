// Package config defines the root command line of the phonepad binary.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/phonepad/phonepad/internal/cmd"
)

// LogConfig holds the global logging flags.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"PHONEPAD_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of the console" env:"PHONEPAD_LOG_FILE"`
	RawFile string `help:"Write every client frame to this file" env:"PHONEPAD_LOG_RAW_FILE"`
}

// CLI is the root kong grammar.
type CLI struct {
	Log        LogConfig        `embed:"" prefix:"log."`
	ConfigFile string           `name:"config" help:"Configuration file (json, yaml or toml)" env:"PHONEPAD_CONFIG"`
	Version    kong.VersionFlag `help:"Print version and exit"`

	Server    cmd.Server        `cmd:"" default:"withargs" help:"Run the PhonePad server (default)"`
	Config    cmd.ConfigCommand `cmd:"" help:"Manage configuration files"`
	Backends  cmd.Backends      `cmd:"" help:"List available device backends"`
	Install   cmd.Install       `cmd:"" help:"Install PhonePad as a systemd service"`
	Uninstall cmd.Uninstall     `cmd:"" help:"Remove the PhonePad systemd service"`
}
