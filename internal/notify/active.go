package notify

import (
	"maps"
	"sort"
	"sync"

	"github.com/renflow/renflow-desktop/internal/model"
)

// activeSet tracks notifications a daemon has shown but not yet closed.
// Used by daemons whose platform API cannot list delivered notifications.
type activeSet struct {
	mu      sync.Mutex
	entries map[string]map[string]string
	order   []string
}

func newActiveSet() *activeSet {
	return &activeSet{entries: make(map[string]map[string]string)}
}

func (s *activeSet) add(id string, userInfo map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[id]; !exists {
		s.order = append(s.order, id)
	}
	s.entries[id] = maps.Clone(userInfo)
}

func (s *activeSet) remove(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
	}
	s.compact()
}

func (s *activeSet) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]map[string]string)
	s.order = nil
}

// list returns the tracked notifications in submission order
func (s *activeSet) list() []model.DeliveredNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.DeliveredNotification, 0, len(s.entries))
	for _, id := range s.order {
		if info, ok := s.entries[id]; ok {
			out = append(out, model.DeliveredNotification{ID: id, UserInfo: maps.Clone(info)})
		}
	}
	return out
}

func (s *activeSet) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for id := range s.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *activeSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// compact drops ids no longer present; caller holds mu
func (s *activeSet) compact() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.entries[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}
