package assets

import (
	"fmt"
	"regexp"
)

const maxAssetNameLength = 64

var assetName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateAssetName accepts letters, digits, '-' and '_'. Separators and
// dots never reach the filesystem.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case len(name) > maxAssetNameLength:
		return fmt.Errorf("%w: %d chars (max %d)", ErrInvalidAssetName, len(name), maxAssetNameLength)
	case !assetName.MatchString(name):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
