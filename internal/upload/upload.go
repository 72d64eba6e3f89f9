// Package upload validates photos shared to the gallery. Nothing is stored.
package upload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxSize is the largest accepted photo, 5 MiB.
const MaxSize = 5 * 1024 * 1024

var validate = validator.New()

// File describes a selected file as reported by the client.
type File struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type" validate:"required,startswith=image/"`
	Size      int64  `json:"size" validate:"gte=0,max=5242880"`
}

// ValidationError is a rejected upload with a reason fit to show the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validate accepts f only if its media type is an image type and it is no
// larger than MaxSize. A rejection is returned as *ValidationError.
func Validate(f File) error {
	f.MediaType = strings.ToLower(strings.TrimSpace(f.MediaType))

	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate upload: %w", err)
	}
	return reason(verrs[0], f)
}

func reason(fe validator.FieldError, f File) *ValidationError {
	switch fe.Field() {
	case "MediaType":
		if f.MediaType == "" {
			return &ValidationError{Field: "media_type", Reason: "Please select an image file."}
		}
		return &ValidationError{
			Field:  "media_type",
			Reason: fmt.Sprintf("Only image files can be shared (got %s).", f.MediaType),
		}
	case "Size":
		if f.Size < 0 {
			return &ValidationError{Field: "size", Reason: "The file size could not be determined."}
		}
		return &ValidationError{
			Field:  "size",
			Reason: fmt.Sprintf("Images must be 5MB or smaller (this one is %.1fMB).", float64(f.Size)/(1024*1024)),
		}
	}
	return &ValidationError{Field: fe.Field(), Reason: "The file could not be accepted."}
}
