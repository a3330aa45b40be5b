package matcher

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"*.top", `.*\.top`},
		{"salt?", `salt.`},
		{"a.b", `a\.b`},
		{"[abc]x", `[abc]x`},
		{"[!abc]", `[^abc]`},
		{"[^abc]", `[\^abc]`},
		{"[]]", `[]]`},
		{"a[", `a\[`},
		{"salt/*", `salt/.*`},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := Translate(tt.pattern)
			assert.Equal(t, tt.want, got)

			// Every translation must compile
			_, err := regexp.Compile(got)
			require.NoError(t, err)
		})
	}
}

func TestTranslateMatchesLikeGlob(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"*.top", "salt/init.top", true},
		{"*.top", "salt/init.tops", false},
		{"salt/*", "salt/minion.sls", true},
		{"s?lt", "salt", true},
		{"s?lt", "sslt", true},
		{"[!s]alt", "salt", false},
		{"[!s]alt", "malt", true},
	}

	for _, tt := range tests {
		re := regexp.MustCompile(`\A` + Translate(tt.pattern) + `\z`)
		assert.Equal(t, tt.match, re.MatchString(tt.input), "%s vs %s", tt.pattern, tt.input)
	}
}
