package commsutil

import (
	"errors"
	"testing"
)

const codecTestPrefix = "commsutil:codec_test"

func TestEncodePayload(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    string
		wantErr bool
	}{
		{
			name:  "tagged struct",
			input: struct {
				ID string `json:"id"`
			}{ID: "inv-1"},
			want: `{"id":"inv-1"}`,
		},
		{
			name:  "omitted optional",
			input: struct {
				Kind    string  `json:"kind"`
				Expires *string `json:"expires_at,omitempty"`
			}{Kind: "sent"},
			want: `{"kind":"sent"}`,
		},
		{
			name:  "nil",
			input: nil,
			want:  "null",
		},
		{
			name:    "channel is not serializable",
			input:   make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodePayload(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("%s - expected error but got nil", codecTestPrefix)
				}
				return
			}
			if err != nil {
				t.Fatalf("%s - unexpected error: %v", codecTestPrefix, err)
			}
			if got := string(data); got != tt.want {
				t.Errorf("%s - EncodePayload() = %q, want %q", codecTestPrefix, got, tt.want)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	var target struct {
		ID   string `json:"id"`
		Uses int    `json:"remaining_uses"`
	}
	if err := DecodePayload([]byte(`{"id":"inv-9","remaining_uses":3}`), &target); err != nil {
		t.Fatalf("%s - unexpected error: %v", codecTestPrefix, err)
	}
	if target.ID != "inv-9" || target.Uses != 3 {
		t.Errorf("%s - decoded %+v", codecTestPrefix, target)
	}
}

func TestDecodePayload_Errors(t *testing.T) {
	var m map[string]string
	if err := DecodePayload([]byte(`{invalid}`), &m); err == nil {
		t.Errorf("%s - expected error for invalid json", codecTestPrefix)
	}
	if err := DecodePayload(nil, &m); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("%s - expected ErrEmptyPayload, got %v", codecTestPrefix, err)
	}
}
