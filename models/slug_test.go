package models_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"blogforge/models"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Special!@#Characters$%^", "specialcharacters"},
		{"Multiple   spaces\tand\ntabs", "multiple-spaces-and-tabs"},
		{"MixedCASE123", "mixedcase123"},
		{"", ""},
		{"!!!", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, models.Slugify(c.in, models.SlugMaxLength), "input %q", c.in)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := strings.Repeat("word ", 40)
	slug := models.Slugify(long, models.SlugMaxLength)
	assert.LessOrEqual(t, len([]rune(slug)), models.SlugMaxLength)
	assert.False(t, strings.HasSuffix(slug, "-"), "truncation must not leave a trailing dash")
}

func TestDedupKeywords(t *testing.T) {
	got := models.DedupKeywords([]string{"go", "mongo", "go", "redis", "mongo"})
	assert.Equal(t, []string{"go", "mongo", "redis"}, got)

	assert.Equal(t, []string{}, models.DedupKeywords(nil))
}

func TestKeywordsEqualIgnoresOrder(t *testing.T) {
	assert.True(t, models.KeywordsEqual([]string{"a", "b", "c"}, []string{"c", "a", "b"}))
	assert.False(t, models.KeywordsEqual([]string{"a", "b"}, []string{"a", "b", "c"}))
	assert.False(t, models.KeywordsEqual([]string{"a", "b"}, []string{"a", "x"}))
	assert.True(t, models.KeywordsEqual(nil, nil))
}
