package export

import (
	"strings"

	"github.com/ronikobrosly/retroflow/pkg/errors"
)

// OutputFormat identifies a supported export format.
type OutputFormat string

// Supported export formats.
const (
	FormatText OutputFormat = "txt"
	FormatPNG  OutputFormat = "png"
)

// FormatForPath derives the export format from a path's extension.
// Paths without a recognized extension default to text.
func FormatForPath(path string) (OutputFormat, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return FormatPNG, nil
	case strings.HasSuffix(lower, ".txt"), !strings.Contains(lower, "."):
		return FormatText, nil
	default:
		idx := strings.LastIndex(lower, ".")
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (use .txt or .png)", lower[idx:])
	}
}
