package articles

import "errors"

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrSlugTaken       = errors.New("slug is already used by another article")
	ErrEmptySlug       = errors.New("slug must contain letters or digits")
	ErrUnknownKind     = errors.New("unknown article kind")
)
