package slugs

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Café Day", "cafe-day"},
		{"  Hello,   World!  ", "hello-world"},
		{"Привет мир", "privet-mir"},
		{"already-a-slug", "already-a-slug"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMake_Truncates(t *testing.T) {
	got := Make(strings.Repeat("word ", 30))
	assert.LessOrEqual(t, len(got), 50)
	assert.Regexp(t, slugPattern, got)
}

func TestMakeOr_Fallback(t *testing.T) {
	got, err := MakeOr("???", "post")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "post-"))
	assert.Regexp(t, slugPattern, got)

	got, err = MakeOr("Trip to Riga", "post")
	require.NoError(t, err)
	assert.Equal(t, "trip-to-riga", got)
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"walk": true, "walk-2": true}
	exists := func(s string) (bool, error) { return taken[s], nil }

	got, err := Unique("walk", exists)
	require.NoError(t, err)
	assert.Equal(t, "walk-3", got)

	got, err = Unique("run", exists)
	require.NoError(t, err)
	assert.Equal(t, "run", got)
}

func TestUnique_LongBaseStaysWithinLimit(t *testing.T) {
	base := strings.Repeat("a", 50)
	exists := func(s string) (bool, error) { return s == base, nil }

	got, err := Unique(base, exists)
	require.NoError(t, err)
	assert.Len(t, got, 50)
	assert.True(t, strings.HasSuffix(got, "-2"))
}

func TestUnique_PropagatesError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Unique("x", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestFromEmail(t *testing.T) {
	assert.Equal(t, "john-doe", FromEmail("John.Doe@example.com"))
	assert.Equal(t, "", FromEmail("@example.com"))
}
