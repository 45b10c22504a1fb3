package reconcile

import (
	"errors"
	"testing"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"abcd123", false},
		{"abcd12", true},
		{"abcd1234", true},
		{"", true},
		{"abcd123.example.com", true},
		{"abcdé1", true},
		{"ééééééé", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Fatalf("ParseName(%q) error = %v, want ErrInvalidName", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.String() != tt.input {
				t.Errorf("ParseName(%q) = %q", tt.input, got)
			}
		})
	}
}

func TestNameFromUUID(t *testing.T) {
	tests := []struct {
		uuid    string
		want    Name
		wantErr bool
	}{
		{uuid: "abcd1234567890abcdef", want: "abcd123"},
		{uuid: "abcd123", want: "abcd123"},
		{uuid: "abc", wantErr: true},
		{uuid: "", wantErr: true},
		{uuid: "abcdéf0123456789", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uuid, func(t *testing.T) {
			got, err := NameFromUUID(tt.uuid)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Fatalf("NameFromUUID(%q) error = %v, want ErrInvalidName", tt.uuid, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NameFromUUID(%q) = %q, want %q", tt.uuid, got, tt.want)
			}
		})
	}
}
