package customfield

import (
	"errors"
	"strings"
	"testing"
)

func TestNewLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrLabelEmpty},
		{name: "whitespace only", input: " \t ", wantErr: ErrLabelEmpty},
		{name: "257 characters", input: strings.Repeat("x", 257), wantErr: ErrLabelTooLong},
		{name: "single character", input: "a", want: "a"},
		{name: "256 characters", input: strings.Repeat("x", 256), want: strings.Repeat("x", 256)},
		{name: "spaces and punctuation allowed", input: " Customer Region (EU) ", want: "Customer Region (EU)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLabel(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewLabel error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLabel unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("NewLabel = %q, want %q", got.String(), tt.want)
			}
		})
	}
}
