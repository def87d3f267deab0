package validators

import (
	"strings"
	"unicode"

	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
)

const maxCodeLen = 64

// NormalizeCode trims a decoded barcode and rejects empty, oversized or
// non-printable input before it reaches the catalog.
func NormalizeCode(input string) (string, error) {
	code := strings.TrimSpace(input)
	if code == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "code is required").WithDetails(map[string]string{"code": "is required"})
	}
	if len(code) > maxCodeLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "code is too long").WithDetails(map[string]any{"code": "is too long", "max": maxCodeLen})
	}
	for _, r := range code {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "code contains invalid characters").WithDetails(map[string]string{"code": "is invalid"})
		}
	}
	return code, nil
}
