package errors

import (
	"path/filepath"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "charts/sales.png", false},
		{"valid filename only", "wallpaper.jpg", false},
		{"valid with dots", "v1.2.3/bg.png", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	got, err := ResolvePath("/srv/images", "bg/sky.png")
	if err != nil {
		t.Fatalf("ResolvePath() error: %v", err)
	}
	if want := filepath.Join("/srv/images", "bg", "sky.png"); got != want {
		t.Errorf("ResolvePath() = %q, want %q", got, want)
	}

	got, err = ResolvePath("", "out.png")
	if err != nil {
		t.Fatalf("ResolvePath() error: %v", err)
	}
	if got != "out.png" {
		t.Errorf("ResolvePath() with empty root = %q, want %q", got, "out.png")
	}

	if _, err := ResolvePath("/srv", "../secret"); err == nil {
		t.Error("ResolvePath() should reject traversal")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"sales", false},
		{"sales.chart", false},
		{"dir/sales", true},
		{".hidden", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := ValidateName(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeUsage,
		ErrCodeUnknown,
		ErrCodeInvalidColor,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeWrongType,
		ErrCodeInvalidLayer,
		ErrCodeNoLayerSlots,
		ErrCodeNotFound,
		ErrCodeChartNotFound,
		ErrCodeFileNotFound,
		ErrCodeNoConnection,
		ErrCodeRender,
		ErrCodeStore,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
