package suite

import "github.com/vvsotnikov/playwright/internal/domain"

// FilterTestsRemoveEmpty keeps the tests accepted by keep and drops every
// group left without entries. It reports whether s still has entries.
func FilterTestsRemoveEmpty(s *Suite, keep func(*Test) bool) bool {
	kept := s.entries[:0]
	for _, e := range s.entries {
		switch v := e.(type) {
		case *Suite:
			if FilterTestsRemoveEmpty(v, keep) {
				kept = append(kept, v)
			}
		case *Test:
			if keep(v) {
				kept = append(kept, v)
			}
		}
	}
	clear(s.entries[len(kept):])
	s.entries = kept
	return len(s.entries) > 0
}

// FilterByLocation keeps the tests whose location matches, plus whole groups
// whose own declaration matches. Groups emptied by the filter are left in
// place; a later FilterTestsRemoveEmpty prunes them.
func FilterByLocation(s *Suite, matches func(domain.Location) bool) {
	kept := s.entries[:0]
	for _, e := range s.entries {
		switch v := e.(type) {
		case *Suite:
			if v.Location == nil || !matches(*v.Location) {
				FilterByLocation(v, matches)
			}
			kept = append(kept, v)
		case *Test:
			if matches(v.Location) {
				kept = append(kept, v)
			}
		}
	}
	clear(s.entries[len(kept):])
	s.entries = kept
}

// OnlyItems returns every focused suite and test below s in declaration order
func OnlyItems(s *Suite) []Entry {
	var out []Entry
	s.Walk(func(e Entry) {
		if e.IsOnly() {
			out = append(out, e)
		}
	})
	return out
}

// FilterOnly reduces s to its focused items. A focused group keeps all of its
// entries unless it contains focused items itself. Without any focused item
// the tree is left unchanged.
func FilterOnly(s *Suite) {
	if len(OnlyItems(s)) == 0 {
		return
	}
	filterOnly(s)
}

func filterOnly(s *Suite) bool {
	kept := s.entries[:0]
	for _, e := range s.entries {
		switch v := e.(type) {
		case *Suite:
			if filterOnly(v) || v.Only {
				kept = append(kept, v)
			}
		case *Test:
			if v.Only {
				kept = append(kept, v)
			}
		}
	}
	if len(kept) == 0 {
		return false
	}
	clear(s.entries[len(kept):])
	s.entries = kept
	return true
}
