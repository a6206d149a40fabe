package listview

import "testing"

func TestGuard(t *testing.T) {
	t.Run("latest token wins", func(t *testing.T) {
		var g Guard
		slow := g.Begin()
		fast := g.Begin()

		// The faster, newer request resolves first and is applied.
		if !g.Current(fast) {
			t.Fatal("newest token should be current")
		}
		// The older request resolves late; its result must be dropped.
		if g.Current(slow) {
			t.Fatal("superseded token should no longer be current")
		}
	})

	t.Run("token stays current until the next dispatch", func(t *testing.T) {
		var g Guard
		token := g.Begin()
		if !g.Current(token) {
			t.Fatal("token should be current before any new dispatch")
		}
		if !g.Current(token) {
			t.Fatal("checking a token must not consume it")
		}
		g.Begin()
		if g.Current(token) {
			t.Fatal("token should be invalidated by a new dispatch")
		}
	})
}

func TestSelection(t *testing.T) {
	rows := []string{"a", "b", "c"}

	t.Run("select all covers exactly the loaded rows", func(t *testing.T) {
		s := NewSelection(rows)
		s.SetAll(true)
		if got := s.Checked(); len(got) != len(rows) {
			t.Fatalf("Checked() = %v, want all %d rows", got, len(rows))
		}
		if !s.AllSelected() {
			t.Fatal("select-all should be set")
		}
	})

	t.Run("unchecking one row clears select-all", func(t *testing.T) {
		s := NewSelection(rows)
		s.SetAll(true)
		s.Toggle("b", false)
		if s.AllSelected() {
			t.Fatal("select-all should clear when any row is unchecked")
		}
		if s.IsChecked("b") {
			t.Fatal("row b should be unchecked")
		}
	})

	t.Run("re-checking the last row restores select-all", func(t *testing.T) {
		s := NewSelection(rows)
		s.SetAll(true)
		s.Toggle("b", false)
		s.Toggle("b", true)
		if !s.AllSelected() {
			t.Fatal("select-all should restore once every row is checked again")
		}
	})

	t.Run("checking rows one by one sets select-all at the end", func(t *testing.T) {
		s := NewSelection(rows)
		for _, id := range rows {
			s.Toggle(id, true)
		}
		if !s.AllSelected() {
			t.Fatal("select-all should be set once every row is checked")
		}
	})

	t.Run("reset clears everything on a page change", func(t *testing.T) {
		s := NewSelection(rows)
		s.SetAll(true)
		s.Reset([]string{"d", "e"})
		if len(s.Checked()) != 0 || s.AllSelected() {
			t.Fatal("selection must reset when the underlying page changes")
		}
	})

	t.Run("unknown rows are ignored", func(t *testing.T) {
		s := NewSelection(rows)
		s.Toggle("zz", true)
		if len(s.Checked()) != 0 {
			t.Fatal("toggling a row that is not loaded should do nothing")
		}
	})

	t.Run("select-all on an empty page stays false", func(t *testing.T) {
		s := NewSelection(nil)
		s.SetAll(true)
		if s.AllSelected() {
			t.Fatal("an empty page can never be fully selected")
		}
	})
}

func TestPageState(t *testing.T) {
	t.Run("totals are replaced wholesale", func(t *testing.T) {
		p := PageState{CurrentPage: 2}
		p.Apply(45, 5, 10)
		if p.Total != 45 || p.TotalPages != 5 || p.Limit != 10 {
			t.Fatalf("Apply() left %+v", p)
		}
		if p.CurrentPage != 2 {
			t.Fatal("current page is owned locally and must not change")
		}
	})

	t.Run("current page clamps into the new range", func(t *testing.T) {
		p := PageState{CurrentPage: 9}
		p.Apply(12, 2, 10)
		if p.CurrentPage != 2 {
			t.Fatalf("CurrentPage = %d, want clamp to 2", p.CurrentPage)
		}
	})
}
