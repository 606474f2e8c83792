package fortuna

import (
	"strings"
	"time"

	"github.com/sgi/backend/internal/domain/shared"
)

// Issue is one published edition of the Fortuna publication
type Issue struct {
	shared.BaseEntity
	Title       string
	PublishedOn time.Time
}

// NewIssue creates an issue
func NewIssue(title string, publishedOn time.Time, now time.Time) (*Issue, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("title", "Title cannot be empty")
	}
	if publishedOn.IsZero() {
		return nil, shared.NewValidationError("published_on", "Publication date is required")
	}
	return &Issue{
		BaseEntity:  shared.NewBaseEntity(now),
		Title:       title,
		PublishedOn: shared.DateOf(publishedOn),
	}, nil
}
