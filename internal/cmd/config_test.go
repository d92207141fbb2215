package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

func TestFlagKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Addr", "addr"},
		{"MaxMessageSize", "max_message_size"},
		{"BusID", "bus_id"},
		{"VendorID", "vendor_id"},
		{"IP", "ip"},
		{"UinputPath", "uinput_path"},
		{"HTTPServer", "http_server"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, flagKey(tt.in, "_"))
		})
	}
	assert.Equal(t, "idle-timeout", flagKey("IdleTimeout", "-"))
}

func TestConfigInit_JSON(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "server.json")
	c := &ConfigInit{Command: "server", Format: "json", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	ws := got["ws"].(map[string]any)
	assert.Equal(t, ":8765", ws["addr"])
	assert.Equal(t, float64(4096), ws["max_message_size"])

	sess := got["session"].(map[string]any)
	assert.Equal(t, "500ms", sess["idle_timeout"])

	dev := got["device"].(map[string]any)
	assert.Equal(t, "uinput", dev["backend"])
	viiper := dev["viiper"].(map[string]any)
	assert.Equal(t, "localhost:3242", viiper["addr"])

	disc := got["discovery"].(map[string]any)
	assert.Equal(t, true, disc["enabled"])
	assert.Equal(t, "", disc["ip"])
	assert.Equal(t, "5s", got["shutdown_timeout"])

	// refuses to overwrite
	require.Error(t, c.Run())
	c.Force = true
	require.NoError(t, c.Run())
}

func TestConfigInit_YAML(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, (&ConfigInit{Command: "server", Format: "yaml", Output: dest}).Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	sess := got["session"].(map[string]any)
	assert.Equal(t, "100ms", sess["poll-interval"])
}

func TestConfigInit_UnsupportedFormat(t *testing.T) {
	c := &ConfigInit{Command: "server", Format: "ini", Output: filepath.Join(t.TempDir(), "x")}
	require.Error(t, c.Run())
}
