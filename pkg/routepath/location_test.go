package routepath

import (
	"errors"
	"net/url"
	"testing"
)

func TestValidateLocation(t *testing.T) {
	base, _ := url.Parse("https://app.example")

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{
			name: "absolute same origin",
			raw:  "https://app.example/blog/7?x=1#top",
			want: "https://app.example/blog/7?x=1#top",
		},
		{
			name: "relative path",
			raw:  "/about",
			want: "https://app.example/about",
		},
		{
			name: "encoded segment",
			raw:  "/blog/a%20b",
			want: "https://app.example/blog/a%20b",
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: ErrInvalidLocation,
		},
		{
			name:    "other host",
			raw:     "https://evil.example/",
			wantErr: ErrCrossOrigin,
		},
		{
			name:    "protocol relative other host",
			raw:     "//evil.example/x",
			wantErr: ErrCrossOrigin,
		},
		{
			name:    "other scheme",
			raw:     "http://app.example/",
			wantErr: ErrCrossOrigin,
		},
		{
			name:    "encoded null byte",
			raw:     "/blog/%00",
			wantErr: ErrNullByteInPath,
		},
		{
			name:    "encoded backslash",
			raw:     "/blog/%5c",
			wantErr: ErrBackslashInPath,
		},
		{
			name:    "bad escape",
			raw:     "/blog/%GG",
			wantErr: ErrInvalidLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateLocation(base, tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestValidatePercentEscapes(t *testing.T) {
	if err := validatePercentEscapes("/a%2Fb"); err != nil {
		t.Errorf("valid escape rejected: %v", err)
	}
	if err := validatePercentEscapes("/a%2"); err != ErrInvalidPercentEscape {
		t.Errorf("truncated escape accepted: %v", err)
	}
	if err := validatePercentEscapes("/a%zz"); err != ErrInvalidPercentEscape {
		t.Errorf("non-hex escape accepted: %v", err)
	}
}
