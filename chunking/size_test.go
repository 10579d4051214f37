package chunking

import (
	"errors"
	"testing"
)

func TestParseChunkSize(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{name: "empty uses default", value: "", want: DefaultChunkSize},
		{name: "whitespace uses default", value: "  ", want: DefaultChunkSize},
		{name: "plain bytes", value: "1024", want: 1024},
		{name: "kibibytes", value: "4KiB", want: 4096},
		{name: "short unit", value: "1k", want: 1024},
		{name: "megabytes are binary", value: "10MB", want: 10 * 1024 * 1024},
		{name: "zero", value: "0", wantErr: true},
		{name: "negative", value: "-5", wantErr: true},
		{name: "garbage", value: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChunkSize(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChunkSize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidChunkSize) {
					t.Errorf("ParseChunkSize() error = %v, want ErrInvalidChunkSize", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseChunkSize() = %d, want %d", got, tt.want)
			}
		})
	}
}
