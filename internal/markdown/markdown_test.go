package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Quarterly report", FirstHeading("intro line\n\n## Quarterly **report**\n\nbody"))
	assert.Equal(t, "", FirstHeading("no headings here"))
	assert.Equal(t, "Setext", FirstHeading("Setext\n======\n"))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Go at scale", Title("# Go at scale\n\n- one\n- two", 0))
	assert.Equal(t, "First line", Title("First line\n\nsecond paragraph", 0))
	assert.Equal(t, "Дорожная", Title("# Дорожная карта 2025", 8))
	assert.Equal(t, "", Title("", 10))
}

func TestPlainText(t *testing.T) {
	in := "# Title\n\nSome *emphasis* and `code`.\n\n- first\n- second\n"
	assert.Equal(t, "Title\nSome emphasis and code.\n• first\n• second", PlainText(in))
}
