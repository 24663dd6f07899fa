package job

import (
	"strconv"

	"github.com/gosimple/slug"
)

// BaseSlug derives the URL slug for a title.
func BaseSlug(title string) string {
	s := slug.Make(title)
	if s == "" {
		return "job"
	}
	return s
}

// UniqueSlug returns base, or base-2, base-3... whichever is not taken.
func UniqueSlug(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}
