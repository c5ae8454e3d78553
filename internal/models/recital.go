package models

// Recital is a performance event owned by a single user.
type Recital struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Date         string `json:"date,omitempty"` // YYYY-MM-DD
	Location     string `json:"location,omitempty"`
	Description  string `json:"description,omitempty"`
	ProgramNotes string `json:"programNotes,omitempty"`

	// OwnerID is the user who created the recital and the only one allowed
	// to change it.
	OwnerID   string `json:"ownerId"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`

	// Songs is the recital's program in ascending order. Only populated by
	// calls that load the program.
	Songs []ProgramSong `json:"songs,omitempty"`
}

// RecitalPatch carries the fields of a partial recital update.
type RecitalPatch struct {
	Name         *string `json:"name"`
	Date         *string `json:"date"`
	Location     *string `json:"location"`
	Description  *string `json:"description"`
	ProgramNotes *string `json:"programNotes"`
}

// Empty reports whether the patch changes nothing.
func (p RecitalPatch) Empty() bool {
	return p.Name == nil && p.Date == nil && p.Location == nil &&
		p.Description == nil && p.ProgramNotes == nil
}

// RecitalSong places one song within one recital's program.
type RecitalSong struct {
	RecitalID string
	SongID    string
	// Order is the zero-based position, unique within the recital.
	Order int
	Notes string
}

// ProgramSong is a song as it appears on a recital's program.
type ProgramSong struct {
	Song
	Order int    `json:"order"`
	Notes string `json:"notes,omitempty"`
}

// SongOrder is one entry of a reorder request.
type SongOrder struct {
	SongID string `json:"id"`
	Order  int    `json:"order"`
}

// DenseOrders maps entries, already sorted by order, onto 0..n-1 keeping
// their sequence. changed is false when the orders already run 0..n-1.
func DenseOrders(entries []RecitalSong) (orders map[string]int, changed bool) {
	orders = make(map[string]int, len(entries))
	for i, e := range entries {
		orders[e.SongID] = i
		if e.Order != i {
			changed = true
		}
	}
	return orders, changed
}
