package ustar

// Selection is the set of member names requested by the caller along with whether each has been found.
//
// An empty Selection matches every member.
type Selection struct {
	names []string
	found []bool
}

// NewSelection creates a Selection from the given names in order.
//
// A name given more than once is only kept at its first position so that the found flag of a name present in the
// archive is always set.
func NewSelection(names ...string) *Selection {
	s := &Selection{
		names: make([]string, 0, len(names)),
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		s.names = append(s.names, name)
	}

	s.found = make([]bool, len(s.names))
	return s
}

// Len returns the number of distinct requested names.
func (s *Selection) Len() int {
	return len(s.names)
}

// Match returns true if the member name is selected, marking the first equal requested name as found.
//
// Every call is independent so a name appearing several times in the archive matches every time.
func (s *Selection) Match(name string) bool {
	if len(s.names) == 0 {
		return true
	}

	for i, n := range s.names {
		if n == name {
			s.found[i] = true
			return true
		}
	}

	return false
}

// Missing returns the requested names that have not been matched yet, in request order.
func (s *Selection) Missing() (names []string) {
	for i, found := range s.found {
		if !found {
			names = append(names, s.names[i])
		}
	}

	return
}
