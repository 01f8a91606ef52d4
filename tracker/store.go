package tracker

// Store holds all active tracks for a session in creation order.  The store
// and every track within it, including each track's tracker instance, are
// exclusively owned by the evaluator for its whole running lifetime
type Store struct {
	// tracks is the ordered sequence of active tracks
	tracks []*Track
	// lastID is the most recently assigned track ID.  IDs are assigned
	// from a monotonically increasing counter so they never collide in
	// long running sessions
	lastID int32
}

// NewStore returns an empty track store
func NewStore() *Store {
	return &Store{}
}

// NextID returns a fresh track ID that does not collide with any ID handed
// out since the last Reset
func (s *Store) NextID() int32 {
	s.lastID++
	return s.lastID
}

// Add appends a track to the store
func (s *Store) Add(track *Track) {
	s.tracks = append(s.tracks, track)
}

// Tracks returns the active tracks in creation order
func (s *Store) Tracks() []*Track {
	return s.tracks
}

// Len returns the number of active tracks
func (s *Store) Len() int {
	return len(s.tracks)
}

// remove evicts the track at index i, closing its tracker.  Callers scanning
// the store must revisit index i before advancing as the element previously
// at i+1 now occupies it
func (s *Store) remove(i int) {
	_ = s.tracks[i].Close()
	s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)
}

// Reset evicts every track and restarts the ID counter
func (s *Store) Reset() {
	for _, track := range s.tracks {
		_ = track.Close()
	}

	s.tracks = nil
	s.lastID = 0
}
