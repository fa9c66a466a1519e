package memories

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "ferias-em-sao-paulo", Slugify("Férias em São Paulo!"))
	assert.Equal(t, "nosso-1-ano", Slugify("  Nosso 1º ano  "))
	assert.Equal(t, "", Slugify("!!!"))
	assert.Equal(t, "a-b", Slugify("a---b"))
}

func TestGenerateSlug(t *testing.T) {
	s, err := GenerateSlug("Feliz Aniversário")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "feliz-aniversario-"), s)
	assert.True(t, ValidSlug(s), s)

	s, err = GenerateSlug("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "memoria-"), s)

	s, err = GenerateSlug(strings.Repeat("palavra ", 20))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(s), slugMaxLen)
	assert.True(t, ValidSlug(s), s)
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("abc"))
	assert.True(t, ValidSlug("our-trip-2024"))
	assert.False(t, ValidSlug("ab"))
	assert.False(t, ValidSlug(strings.Repeat("a", 51)))
	assert.False(t, ValidSlug("Upper"))
	assert.False(t, ValidSlug("under_score"))
}
