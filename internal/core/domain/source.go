package domain

import "strings"

// Source is one named place to look for labels. A Source with no
// domains searches the broad web.
type Source struct {
	// Name is the display name, e.g. "CDMS".
	Name string

	// Domains restricts search results to these hosts.
	// Empty means no filter.
	Domains []string
}

// IsBroad returns true if the source has no domain filter.
func (s Source) IsBroad() bool {
	return len(s.Domains) == 0
}

// String returns the display name.
func (s Source) String() string {
	return s.Name
}

// DefaultSourceChain returns the built-in source order: regulator and
// label-archive sites first, the open web last.
func DefaultSourceChain() []Source {
	return []Source{
		{Name: "CDMS", Domains: []string{"cdms.net"}},
		{Name: "Greenbook", Domains: []string{"greenbook.net"}},
		{Name: "EPA", Domains: []string{"epa.gov"}},
		{Name: "CDPR / State DBs", Domains: []string{"cdpr.ca.gov", "picol.cahnrs.wsu.edu"}},
		{Name: "Web (broad)"},
	}
}

// SourceNames returns the display names of the given sources in order.
func SourceNames(sources []Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	return names
}

// ReorderSources returns the chain ordered by the given names. Names that
// match no source are ignored; sources not named keep their relative
// order after the named ones. Matching is case-insensitive.
func ReorderSources(chain []Source, order []string) []Source {
	if len(order) == 0 {
		return chain
	}

	used := make([]bool, len(chain))
	result := make([]Source, 0, len(chain))
	for _, name := range order {
		for i, s := range chain {
			if !used[i] && strings.EqualFold(s.Name, strings.TrimSpace(name)) {
				result = append(result, s)
				used[i] = true
				break
			}
		}
	}
	for i, s := range chain {
		if !used[i] {
			result = append(result, s)
		}
	}
	return result
}
