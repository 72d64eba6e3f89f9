package upload

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		file      File
		wantField string
	}{
		{"jpeg", File{MediaType: "image/jpeg", Size: 1024}, ""},
		{"png at the limit", File{MediaType: "image/png", Size: MaxSize}, ""},
		{"uppercase type", File{MediaType: " IMAGE/WEBP ", Size: 10}, ""},
		{"empty file", File{MediaType: "image/gif", Size: 0}, ""},
		{"one byte over", File{MediaType: "image/png", Size: MaxSize + 1}, "size"},
		{"pdf", File{MediaType: "application/pdf", Size: 100}, "media_type"},
		{"video", File{MediaType: "video/mp4", Size: 100}, "media_type"},
		{"missing type", File{Size: 100}, "media_type"},
		{"negative size", File{MediaType: "image/png", Size: -1}, "size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.file)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if verr.Reason == "" {
				t.Error("Reason is empty")
			}
		})
	}
}

func TestValidateReasonMentionsLimit(t *testing.T) {
	err := Validate(File{MediaType: "image/jpeg", Size: 6 * 1024 * 1024})
	if err == nil || err.Error() != "Images must be 5MB or smaller (this one is 6.0MB)." {
		t.Errorf("Validate() error = %v", err)
	}
}
