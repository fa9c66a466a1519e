package memories

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/memoria/internal/common"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	slugMinLen    = 3
	slugMaxLen    = 50
	slugSuffixLen = 6
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidSlug reports whether s is 3..50 characters of [a-z0-9-].
func ValidSlug(s string) bool {
	return len(s) >= slugMinLen && len(s) <= slugMaxLen && slugPattern.MatchString(s)
}

// foldAccents turns "Férias em São Paulo" into "Ferias em Sao Paulo".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify reduces title to lowercase ASCII words joined by '-'.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(foldAccents(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// GenerateSlug derives a fresh slug from title with a random suffix so two
// pages with the same title do not collide.
func GenerateSlug(title string) (string, error) {
	suffix, err := common.MakeRandBase36String(slugSuffixLen)
	if err != nil {
		return "", err
	}

	base := Slugify(title)
	if base == "" {
		base = "memoria"
	}
	if limit := slugMaxLen - slugSuffixLen - 1; len(base) > limit {
		base = strings.TrimRight(base[:limit], "-")
	}
	return base + "-" + suffix, nil
}
