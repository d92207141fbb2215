package gamepad

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed is returned by DecodeMessage for frames that are not a JSON object.
var ErrMalformed = errors.New("malformed input message")

// Message is one decoded client frame: a partial mapping of field names to
// loosely typed values.
type Message map[string]any

// DecodeMessage parses a frame into a Message.
func DecodeMessage(data []byte) (Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}
	return Message(m), nil
}

// buttonField maps wire keys to the button they drive. "+" and "-" are
// accepted as aliases of plus and minus.
func buttonField(b *Buttons, key string) *bool {
	switch key {
	case "a":
		return &b.A
	case "b":
		return &b.B
	case "x":
		return &b.X
	case "y":
		return &b.Y
	case "lb":
		return &b.LB
	case "rb":
		return &b.RB
	case "plus", "+":
		return &b.Plus
	case "minus", "-":
		return &b.Minus
	case "ls":
		return &b.LS
	case "rs":
		return &b.RS
	case "zl":
		return &b.ZL
	case "zr":
		return &b.ZR
	case "home":
		return &b.Home
	case "capture":
		return &b.Capture
	}
	return nil
}

// Merge applies the fields present in m on top of s. Absent and unknown
// fields are left alone. Values that cannot be coerced fall back to false or
// 0.0 and numeric values are clamped to their range.
func (s *State) Merge(m Message) {
	for key, v := range m {
		if p := buttonField(&s.Buttons, key); p != nil {
			*p = toBool(v)
			continue
		}
		switch key {
		case "dpad":
			str, _ := v.(string)
			s.DPad = ParseDPad(str)
		case "lx":
			s.LX = axis(v)
		case "ly":
			s.LY = axis(v)
		case "rx":
			s.RX = axis(v)
		case "ry":
			s.RY = axis(v)
		case "lt":
			s.LT = trigger(v)
		case "rt":
			s.RT = trigger(v)
		}
	}
}

func axis(v any) float64    { return Clamp(toFloat(v), -1, 1) }
func trigger(v any) float64 { return Clamp(toFloat(v), 0, 1) }

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0 && !math.IsNaN(f)
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	}
	return false
}

func toFloat(v any) float64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, ok := parseFloat(string(t))
		if !ok {
			return 0
		}
		f = n
	case float64:
		f = t
	case int:
		f = float64(t)
	case bool:
		if t {
			f = 1
		}
	case string:
		n, ok := parseFloat(strings.TrimSpace(t))
		if !ok {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return f
}

// parseFloat keeps the ±Inf or zero ParseFloat yields for out of range
// input so the caller can clamp it.
func parseFloat(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}
