package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/repository"
)

const maxSlugAttempts = 1000

// UniqueSlug slugifies source and appends -1, -2, ... until no record other than
// excludeID holds the result.
func UniqueSlug(ctx context.Context, lookup repository.SlugLookup, source string, excludeID uuid.UUID) (string, error) {
	base := slug.Make(source)
	if base == "" {
		base = "untitled"
	}
	if lookup == nil {
		return base, nil
	}

	for i := 0; i < maxSlugAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		exists, err := lookup.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", appErrors.NewConflict("slug", base, "no free suffix left")
}
