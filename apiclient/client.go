package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/phonepad/phonepad/apitypes"
)

// Client provides a high-level interface to the VIIPER API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a client for the VIIPER API server at addr (host:port).
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithConfig constructs a client with custom transport settings.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// BusListCtx retrieves a list of all active virtual USB bus numbers.
func (c *Client) BusListCtx(ctx context.Context) (*apitypes.BusListResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "bus/list", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.BusListResponse](raw)
}

// BusCreateCtx creates a new virtual USB bus with the specified bus number.
func (c *Client) BusCreateCtx(ctx context.Context, busID uint32) (*apitypes.BusCreateResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "bus/create", fmt.Sprintf("%d", busID), nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.BusCreateResponse](raw)
}

// BusRemoveCtx removes a virtual USB bus and all devices attached to it.
func (c *Client) BusRemoveCtx(ctx context.Context, busID uint32) (*apitypes.BusRemoveResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "bus/remove", fmt.Sprintf("%d", busID), nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.BusRemoveResponse](raw)
}

// DeviceAddCtx adds a new device of the specified type (e.g. "xbox360") to
// the given bus. Zero vendor or product ids keep the device defaults.
func (c *Client) DeviceAddCtx(ctx context.Context, busID uint32, devType string, vendor, product uint16) (*apitypes.Device, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", busID)}
	req := apitypes.DeviceCreateRequest{Type: &devType}
	if vendor != 0 {
		req.IdVendor = &vendor
	}
	if product != 0 {
		req.IdProduct = &product
	}
	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal device create request: %w", err)
	}
	raw, err := c.transport.DoCtx(ctx, "bus/{id}/add", string(payloadBytes), pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.Device](raw)
}

// DeviceRemoveCtx removes a device from the specified bus by its device ID.
func (c *Client) DeviceRemoveCtx(ctx context.Context, busID uint32, devID string) (*apitypes.DeviceRemoveResponse, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", busID)}
	raw, err := c.transport.DoCtx(ctx, "bus/{id}/remove", devID, pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.DeviceRemoveResponse](raw)
}

// DevicesListCtx retrieves all devices attached to the specified bus.
func (c *Client) DevicesListCtx(ctx context.Context, busID uint32) (*apitypes.DevicesListResponse, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", busID)}
	raw, err := c.transport.DoCtx(ctx, "bus/{id}/list", nil, pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.DevicesListResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
