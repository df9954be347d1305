// Package slugs derives URL-safe identifiers for users, posts, tags and emoji.
package slugs

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/utils"
)

// maxAttempts bounds the suffix search before falling back to a random suffix.
const maxAttempts = 100

// ExistsFunc reports whether a candidate slug is already taken.
type ExistsFunc func(candidate string) (bool, error)

// Make transliterates s and returns a lower-case, hyphenated slug of at most
// MaxPostSlugLength characters. It returns "" when nothing sluggable remains.
func Make(s string) string {
	return truncate(slug.Make(s), constants.MaxPostSlugLength)
}

// MakeOr is Make with a "<prefix>-<random hex>" fallback for input that has
// no sluggable characters.
func MakeOr(s, prefix string) (string, error) {
	if base := Make(s); base != "" {
		return base, nil
	}
	suffix, err := utils.RandomHex(4)
	if err != nil {
		return "", fmt.Errorf("failed to generate slug suffix: %w", err)
	}
	return prefix + "-" + suffix, nil
}

// Unique returns base, or base with the first free "-N" suffix (N ≥ 2).
// The result is still subject to the store's unique index.
func Unique(base string, exists ExistsFunc) (string, error) {
	taken, err := exists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for n := 2; n <= maxAttempts; n++ {
		suffix := fmt.Sprintf("-%d", n)
		candidate := truncate(base, constants.MaxPostSlugLength-len(suffix)) + suffix
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	random, err := utils.RandomHex(4)
	if err != nil {
		return "", fmt.Errorf("failed to generate slug suffix: %w", err)
	}
	return truncate(base, constants.MaxPostSlugLength-len(random)-1) + "-" + random, nil
}

// FromEmail derives a slug from the local part of an email address.
func FromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return Make(local)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}
