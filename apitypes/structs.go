// Package apitypes holds the JSON shapes exchanged with a VIIPER API server and
// served by the PhonePad status endpoint.
package apitypes

import (
	"fmt"
	"strconv"
	"strings"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

func ErrUnauthorized(detail string) *ApiError {
	return &ApiError{Status: 401, Title: "Unauthorized", Detail: detail}
}

// -- VIIPER

type BusListResponse struct {
	Buses []uint32 `json:"buses"`
}

type BusCreateResponse struct {
	BusID uint32 `json:"busId"`
}

type BusRemoveResponse struct {
	BusID uint32 `json:"busId"`
}

type Device struct {
	BusID uint32 `json:"busId"`
	DevId string `json:"devId"`
	Vid   string `json:"vid"`
	Pid   string `json:"pid"`
	Type  string `json:"type"`
}

type DevicesListResponse struct {
	Devices []Device `json:"devices"`
}

type DeviceRemoveResponse struct {
	BusID uint32 `json:"busId"`
	DevId string `json:"devId"`
}

type DeviceCreateRequest struct {
	Type      *string `json:"type"`
	IdVendor  *uint16 `json:"idVendor,omitempty"`
	IdProduct *uint16 `json:"idProduct,omitempty"`
}

// HexID formats a USB id the way VIIPER reports it ("0x045e").
func HexID(v uint16) string {
	return fmt.Sprintf("0x%04x", v)
}

// ParseHexID accepts "0x045e", "045e" or a decimal string.
func ParseHexID(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s = s[2:]
		base = 16
	} else if strings.ContainsAny(s, "abcdefABCDEF") {
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid hex/numeric string %q: %w", s, err)
	}
	return uint16(v), nil
}

// -- PhonePad status endpoint

type StatusResponse struct {
	Server   string        `json:"server"`
	Version  string        `json:"version"`
	Backend  string        `json:"backend"`
	Sessions []SessionInfo `json:"sessions"`
}

type SessionInfo struct {
	ID          string `json:"id"`
	Remote      string `json:"remote"`
	Phase       string `json:"phase"`
	ConnectedAt string `json:"connectedAt"`
}
