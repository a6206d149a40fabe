// Package listview holds the state a paginated table view owns on the
// client side: the current page, row selection, and a request
// generation guard that keeps a slow stale fetch from overwriting the
// result of a newer one.
package listview

import "sync"

// Guard is a request-generation counter. Every dispatch captures a
// token; a response is applied only while its token is still current,
// so out-of-order completions of superseded fetches are dropped.
type Guard struct {
	mu  sync.Mutex
	gen uint64
}

// Begin invalidates all outstanding tokens and returns a fresh one for
// the fetch being dispatched.
func (g *Guard) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	return g.gen
}

// Current reports whether token still belongs to the latest dispatch.
// Call it when a response arrives; a false return means the result
// must be discarded.
func (g *Guard) Current(token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return token == g.gen
}

// Selection is the page-scoped checkbox state of a table. "Select all"
// is only ever relative to the rows loaded on the current page, never
// the full remote result set, and the whole selection resets whenever
// the page, filters, or search change.
type Selection struct {
	rows      []string
	checked   map[string]bool
	selectAll bool
}

// NewSelection starts a fresh selection over the rows currently loaded.
func NewSelection(rowIDs []string) *Selection {
	s := &Selection{}
	s.Reset(rowIDs)
	return s
}

// Reset replaces the loaded rows and clears every checkbox. Called on
// any page, filter, or search change.
func (s *Selection) Reset(rowIDs []string) {
	s.rows = append([]string(nil), rowIDs...)
	s.checked = make(map[string]bool, len(rowIDs))
	s.selectAll = false
}

// Toggle sets a single row's checkbox. Unchecking any row clears
// select-all; checking the last unchecked row restores it.
func (s *Selection) Toggle(rowID string, checked bool) {
	if !s.isLoaded(rowID) {
		return
	}
	s.checked[rowID] = checked
	if !checked {
		s.selectAll = false
		return
	}
	s.selectAll = s.allChecked()
}

// SetAll checks or unchecks every loaded row.
func (s *Selection) SetAll(checked bool) {
	for _, id := range s.rows {
		s.checked[id] = checked
	}
	s.selectAll = checked && len(s.rows) > 0
}

// IsChecked reports a single row's checkbox state.
func (s *Selection) IsChecked(rowID string) bool {
	return s.checked[rowID]
}

// AllSelected reports the state of the header "select all" checkbox.
func (s *Selection) AllSelected() bool {
	return s.selectAll
}

// Checked returns the IDs of the currently checked rows, in row order.
func (s *Selection) Checked() []string {
	var out []string
	for _, id := range s.rows {
		if s.checked[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s *Selection) isLoaded(rowID string) bool {
	for _, id := range s.rows {
		if id == rowID {
			return true
		}
	}
	return false
}

func (s *Selection) allChecked() bool {
	if len(s.rows) == 0 {
		return false
	}
	for _, id := range s.rows {
		if !s.checked[id] {
			return false
		}
	}
	return true
}

// PageState is the only page-related state a list view owns locally.
// Totals are replaced wholesale from each response.
type PageState struct {
	CurrentPage int
	Total       int64
	TotalPages  int
	Limit       int
}

// Apply replaces the remote-owned fields from the latest response.
func (p *PageState) Apply(total int64, totalPages, limit int) {
	p.Total = total
	p.TotalPages = totalPages
	p.Limit = limit
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.TotalPages > 0 && p.CurrentPage > p.TotalPages {
		p.CurrentPage = p.TotalPages
	}
}
