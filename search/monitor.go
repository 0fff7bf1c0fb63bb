package search

import "github.com/poiesic/packvault/storage"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(dimension int)
	AfterStoreSearch(matches []storage.Match)
	Dropped(match storage.Match)
	Finish(results []storage.Match)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string) {}
func (n *noopMonitor) AfterEmbedding(_ int) {}
func (n *noopMonitor) AfterStoreSearch(_ []storage.Match) {}
func (n *noopMonitor) Dropped(_ storage.Match) {}
func (n *noopMonitor) Finish(_ []storage.Match) {}
