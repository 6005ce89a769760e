package prompts

import "time"

// SetClock replaces the store's time source.
func (s *FileStore) SetClock(now func() time.Time) {
	s.now = now
}
