package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlugChecker struct {
	taken map[string]bool
}

func (f *fakeSlugChecker) SlugExists(_ context.Context, slug string) (bool, error) {
	return f.taken[slug], nil
}

func TestAssignBaseSlug(t *testing.T) {
	checker := &fakeSlugChecker{taken: map[string]bool{}}
	assigner := NewSlugAssigner(checker)

	got, err := assigner.Assign(context.Background(), "Red Shoes")
	require.NoError(t, err)
	assert.Equal(t, "red-shoes", got)
}

func TestAssignProbesCollisionsInOrder(t *testing.T) {
	// Two products with the same title, the store updated between calls.
	checker := &fakeSlugChecker{taken: map[string]bool{}}
	assigner := NewSlugAssigner(checker)
	ctx := context.Background()

	first, err := assigner.Assign(ctx, "Red Shoes")
	require.NoError(t, err)
	checker.taken[first] = true

	second, err := assigner.Assign(ctx, "Red Shoes")
	require.NoError(t, err)
	checker.taken[second] = true

	third, err := assigner.Assign(ctx, "Red Shoes")
	require.NoError(t, err)

	assert.Equal(t, "red-shoes", first)
	assert.Equal(t, "red-shoes-1", second)
	assert.Equal(t, "red-shoes-2", third)
}

func TestAssignTransliteratesTitle(t *testing.T) {
	assigner := NewSlugAssigner(&fakeSlugChecker{taken: map[string]bool{}})

	got, err := assigner.Assign(context.Background(), "Café Crème — Édition 2")
	require.NoError(t, err)
	assert.Equal(t, "cafe-creme-edition-2", got)
}

func TestAssignTruncatesLongTitles(t *testing.T) {
	assigner := NewSlugAssigner(&fakeSlugChecker{taken: map[string]bool{}})

	long := strings.Repeat("very long product title ", 20)
	got, err := assigner.Assign(context.Background(), long)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(got), maxSlugLength)
	assert.False(t, strings.HasSuffix(got, "-"), "truncation must not leave a trailing separator")
}
