package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// maxSlugLength caps the base token before collision suffixes are added.
const maxSlugLength = 200

// SlugChecker reports whether a slug is already taken.
type SlugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// SlugAssigner derives a unique URL slug from a product title: the title is
// lowercased, transliterated to ASCII and hyphen-separated, then probed
// against the store as base, base-1, base-2, ... until a free token turns
// up. Two concurrent assignments of the same title can still race to the
// same slug; the unique constraint on products.slug is the authoritative
// backstop and callers retry assignment once on that conflict.
type SlugAssigner struct {
	store SlugChecker
}

// NewSlugAssigner constructs a SlugAssigner.
func NewSlugAssigner(store SlugChecker) *SlugAssigner {
	return &SlugAssigner{store: store}
}

// Assign returns the slug for a new product with the given title,
// deterministic for the store state at call time.
func (a *SlugAssigner) Assign(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if len(base) > maxSlugLength {
		base = strings.TrimRight(base[:maxSlugLength], "-")
	}

	candidate := base
	for i := 1; ; i++ {
		exists, err := a.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
