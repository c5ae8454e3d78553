package models

// Song is a catalog entry that can be placed on any number of recitals.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Composer string `json:"composer"`
	// Author is the poet or librettist of the text.
	Author   string `json:"author,omitempty"`
	Language string `json:"language"`

	CompositionYear *int   `json:"compositionYear,omitempty"`
	OriginalKey     string `json:"originalKey,omitempty"`
	CatalogueNumber string `json:"catalogueNumber,omitempty"`
	Period          string `json:"period,omitempty"`

	// From names the cycle or set the song belongs to (e.g. "Winterreise").
	From string `json:"from,omitempty"`

	// CreatedBy is the ID of the user who added the song, empty once that
	// user is deleted.
	CreatedBy string `json:"createdBy,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// HasRequiredFields reports whether title, composer and language are set.
func (s *Song) HasRequiredFields() bool {
	return s.Title != "" && s.Composer != "" && s.Language != ""
}

// SongPatch carries the fields of a partial song update. Nil fields are left
// untouched.
type SongPatch struct {
	Title           *string `json:"title"`
	Composer        *string `json:"composer"`
	Author          *string `json:"author"`
	Language        *string `json:"language"`
	CompositionYear *int    `json:"compositionYear"`
	OriginalKey     *string `json:"originalKey"`
	CatalogueNumber *string `json:"catalogueNumber"`
	Period          *string `json:"period"`
	From            *string `json:"from"`
}

// Empty reports whether the patch changes nothing.
func (p SongPatch) Empty() bool {
	return p.Title == nil && p.Composer == nil && p.Author == nil &&
		p.Language == nil && p.CompositionYear == nil && p.OriginalKey == nil &&
		p.CatalogueNumber == nil && p.Period == nil && p.From == nil
}

// BlanksRequired reports whether the patch would clear a required field.
func (p SongPatch) BlanksRequired() bool {
	return (p.Title != nil && *p.Title == "") ||
		(p.Composer != nil && *p.Composer == "") ||
		(p.Language != nil && *p.Language == "")
}
