package viiper

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonepad/phonepad/apiclient"
	"github.com/phonepad/phonepad/device"
)

func TestFactory_Bus(t *testing.T) {
	tests := []struct {
		name       string
		configured uint32
		list       string
		createOK   map[string]bool
		want       uint32
		wantCalls  []string
		wantErr    bool
	}{
		{
			name:      "lowest existing bus",
			list:      `{"buses":[7,3,5]}`,
			want:      3,
			wantCalls: []string{"bus/list"},
		},
		{
			name:       "configured bus exists",
			configured: 5,
			list:       `{"buses":[3,5]}`,
			want:       5,
			wantCalls:  []string{"bus/list"},
		},
		{
			name:       "configured bus created",
			configured: 9,
			list:       `{"buses":[]}`,
			createOK:   map[string]bool{"9": true},
			want:       9,
			wantCalls:  []string{"bus/list", "bus/create 9"},
		},
		{
			name:      "probe until create succeeds",
			list:      `{"buses":[]}`,
			createOK:  map[string]bool{"3": true},
			want:      3,
			wantCalls: []string{"bus/list", "bus/create 1", "bus/create 2", "bus/create 3"},
		},
		{
			name:    "list fails",
			list:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			client := apiclient.WithTransport(apiclient.NewMockTransport(func(path string, payload any, _ map[string]string) (string, error) {
				switch path {
				case "bus/list":
					calls = append(calls, path)
					if tt.list == "" {
						return "", errors.New("connection refused")
					}
					return tt.list, nil
				case "bus/create":
					id := payload.(string)
					calls = append(calls, path+" "+id)
					if tt.createOK[id] {
						return `{"busId":` + id + `}`, nil
					}
					return `{"status":409,"title":"Conflict","detail":"bus exists"}`, nil
				}
				return "", errors.New("unexpected " + path)
			}))

			cfg := device.Config{Viiper: device.ViiperConfig{BusID: tt.configured}}
			f := NewFactory(client, cfg, Profile{Type: "xbox360"}, slog.Default())
			got, err := f.bus(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}
