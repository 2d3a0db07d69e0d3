package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCell(t *testing.T) {
	assert.Equal(t, "Blue", NormalizeCell("  Blue\t"))
	// "e" + combining acute accent folds to the precomposed form.
	assert.Equal(t, "Ren\u00e9", NormalizeCell("Rene\u0301"))
	assert.Equal(t, "", NormalizeCell("   "))
}

