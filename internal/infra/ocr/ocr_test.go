package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguages(t *testing.T) {
	assert.Equal(t, []string{"eng"}, normalizeLanguages(nil))
	assert.Equal(t, []string{"eng"}, normalizeLanguages([]string{" ", ""}))
	assert.Equal(t, []string{"deu", "fra"}, normalizeLanguages([]string{" deu", "fra "}))
}

func TestNewEngine_KeepsLanguages(t *testing.T) {
	e := NewEngine([]string{"eng", "spa"})
	assert.Equal(t, []string{"eng", "spa"}, e.languages)
}
