// Package discovery advertises the server on the local network over
// mDNS/DNS-SD so phones can find it without typing an address.
package discovery

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
)

// Config controls the service announcement.
type Config struct {
	Enabled bool   `help:"Advertise the server over mDNS" default:"true" negatable:"" env:"PHONEPAD_DISCOVERY_ENABLED"`
	Service string `help:"DNS-SD service type" default:"_phonepad._tcp" env:"PHONEPAD_DISCOVERY_SERVICE"`
	Domain  string `help:"DNS-SD domain" default:"local." env:"PHONEPAD_DISCOVERY_DOMAIN"`
	Name    string `help:"Display name shown to clients" default:"PhonePad" env:"PHONEPAD_DISCOVERY_NAME"`
	IP      string `help:"Advertised IPv4 address (detected when empty)" env:"PHONEPAD_DISCOVERY_IP"`
}

// Record is one published service instance.
type Record struct {
	Instance string
	Service  string
	Domain   string
	Host     string
	IP       string
	Port     int
	Text     []string
}

// NewRecord builds the record for this host. Entropy for the instance suffix
// and the opaque id is read from r.
func NewRecord(cfg Config, hostname, ip string, port int, r io.Reader) (Record, error) {
	if net.ParseIP(ip).To4() == nil {
		return Record{}, fmt.Errorf("invalid advertised IPv4 address %q", ip)
	}
	if port <= 0 || port > 65535 {
		return Record{}, fmt.Errorf("invalid port %d", port)
	}
	buf := make([]byte, 10)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Record{}, fmt.Errorf("read random suffix: %w", err)
	}
	host := sanitizeHost(hostname)
	return Record{
		Instance: host + "-" + hex.EncodeToString(buf[:2]),
		Service:  cfg.Service,
		Domain:   cfg.Domain,
		Host:     host,
		IP:       ip,
		Port:     port,
		Text: []string{
			"id=" + hex.EncodeToString(buf[2:]),
			"name=" + cfg.Name,
			"os=" + runtime.GOOS,
			"ip=" + ip,
			"port=" + strconv.Itoa(port),
		},
	}, nil
}

// sanitizeHost keeps the first label of hostname, which is what mDNS
// advertises under the .local domain.
func sanitizeHost(hostname string) string {
	h, _, _ := strings.Cut(strings.TrimSpace(hostname), ".")
	if h == "" {
		return "phonepad"
	}
	return h
}

type shutdowner interface{ Shutdown() }

// register publishes r. It is replaced in tests.
var register = func(r Record) (shutdowner, error) {
	return zeroconf.RegisterProxy(r.Instance, r.Service, r.Domain, r.Port, r.Host, []string{r.IP}, r.Text, nil)
}

// Announcer owns a live mDNS registration.
type Announcer struct {
	record Record
	server shutdowner
	logger *slog.Logger
}

// Announce registers the service for port. The advertised address is cfg.IP,
// or the LAN address when cfg.IP is empty.
func Announce(cfg Config, port int, logger *slog.Logger) (*Announcer, error) {
	ip := cfg.IP
	if ip == "" {
		var err error
		if ip, err = LANAddress(); err != nil {
			return nil, err
		}
	}
	hostname, err := os.Hostname()
	if err != nil {
		logger.Debug("hostname unavailable", "error", err)
	}
	rec, err := NewRecord(cfg, hostname, ip, port, rand.Reader)
	if err != nil {
		return nil, err
	}
	srv, err := register(rec)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", rec.Service, err)
	}
	logger.Info("mDNS service registered", "instance", rec.Instance, "service", rec.Service, "ip", rec.IP, "port", rec.Port)
	return &Announcer{record: rec, server: srv, logger: logger}, nil
}

// Record returns what is being advertised.
func (a *Announcer) Record() Record { return a.record }

// Shutdown withdraws the registration. Safe to call more than once.
func (a *Announcer) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
	a.logger.Info("mDNS service unregistered", "instance", a.record.Instance)
}

// ErrNoLANAddress is returned when no outward facing IPv4 address exists.
var ErrNoLANAddress = errors.New("no LAN IPv4 address")

// LANAddress returns the IPv4 address of the interface holding the default
// route. Dialing UDP only selects a route; no packet is sent.
func LANAddress() (string, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoLANAddress, err)
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.To4() == nil || addr.IP.IsUnspecified() {
		return "", ErrNoLANAddress
	}
	return addr.IP.String(), nil
}
