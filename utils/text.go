// utils/text.go
package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCell trims a spreadsheet cell and folds it to Unicode NFC, so a
// setter name typed with combining accents compares equal to a precomposed one.
func NormalizeCell(cell string) string {
	return norm.NFC.String(strings.TrimSpace(cell))
}
