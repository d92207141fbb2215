package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownBackend is returned by NewFactory for names nobody registered.
var ErrUnknownBackend = errors.New("unknown device backend")

// Backend builds Factories from the server's device configuration.
type Backend interface {
	// NewFactory validates cfg and returns a Factory. It must not create
	// any device yet.
	NewFactory(cfg Config, logger *slog.Logger) (Factory, error)
	// Description is shown by the backends command.
	Description() string
}

var (
	backends   = make(map[string]Backend)
	backendsMu sync.RWMutex
)

// Register registers a backend under a case-insensitive name.
// This should be called from backend package init() functions.
func Register(name string, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[strings.ToLower(name)] = b
}

// Lookup returns the backend registered under name, or nil.
func Lookup(name string) Backend {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return backends[strings.ToLower(name)]
}

// ListBackends returns the sorted names of all registered backends.
func ListBackends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFactory resolves cfg.Backend and builds its Factory.
func NewFactory(cfg Config, logger *slog.Logger) (Factory, error) {
	b := Lookup(cfg.Backend)
	if b == nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, cfg.Backend, strings.Join(ListBackends(), ", "))
	}
	return b.NewFactory(cfg, logger)
}
