package order

import "sync"

// selections holds the buy-now pick of each user. Entries live in memory
// only and are replaced on every pick.
type selections struct {
	mu sync.Mutex
	m  map[string]Line
}

func newSelections() *selections { return &selections{m: map[string]Line{}} }

func (s *selections) put(userID string, l Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = l
}

func (s *selections) get(userID string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.m[userID]
	return l, ok
}

// drop removes the selection only if it is still l, so a newer pick made
// while an order was being placed survives.
func (s *selections) drop(userID string, l Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[userID]; ok && cur == l {
		delete(s.m, userID)
	}
}
