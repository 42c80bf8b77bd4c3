package domain

// Bookmark is a saved web link as persisted in bookmarks_data.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the persistence layer on insert and never changes.
	ID int64 `json:"id" db:"id"`

	// ─────────────────────────────
	// User supplied fields
	// ─────────────────────────────

	// Title is never empty once persisted.
	Title string `json:"title" db:"title"`

	// URL is an absolute http or https URI.
	// Example: https://go.dev/doc/effective_go
	URL string `json:"url" db:"url"`

	// Description is optional. Nil is serialized as null.
	Description *string `json:"description" db:"description"`

	// Rating is an integer in [MinRating, MaxRating].
	Rating int `json:"rating" db:"rating"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// Input is a decoded request body (or seed entry) before validation.
// Values keep whatever type the decoder produced.
type Input map[string]any

// Draft is a validated payload ready for insertion.
type Draft struct {
	Title       string
	URL         string
	Description *string
	Rating      int
}

// Patch carries only the fields a partial update touches.
type Patch struct {
	Title *string
	URL   *string

	// SetDescription reports whether description was supplied at all.
	// A nil Description with SetDescription clears the column.
	SetDescription bool
	Description    *string

	Rating *int
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && !p.SetDescription && p.Rating == nil
}

// Apply returns b with the patch fields replaced.
func (b Bookmark) Apply(p Patch) Bookmark {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.URL != nil {
		b.URL = *p.URL
	}
	if p.SetDescription {
		b.Description = cloneString(p.Description)
	}
	if p.Rating != nil {
		b.Rating = *p.Rating
	}
	return b
}

// Clone returns a copy that shares no pointers with b.
func (b Bookmark) Clone() Bookmark {
	b.Description = cloneString(b.Description)
	return b
}

// FromDraft builds the record a gateway stores for d under id.
func FromDraft(id int64, d Draft) Bookmark {
	return Bookmark{
		ID:          id,
		Title:       d.Title,
		URL:         d.URL,
		Description: cloneString(d.Description),
		Rating:      d.Rating,
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
