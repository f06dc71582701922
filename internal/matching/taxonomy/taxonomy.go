// internal/matching/taxonomy/taxonomy.go

// Package taxonomy maps free-form Korean industry and technology text to
// a fixed sector taxonomy and scores cross-sector relevance. The table
// is built once and is immutable afterwards, so a single instance is
// safe for concurrent use.
package taxonomy

import "sort"

// Match describes how a text resolved to a sector.
type Match struct {
	Sector    SectorID
	SubSector string // empty when a primary keyword matched
	Keyword   string // the normalized keyword that matched
	Primary   bool
}

// Options tunes table behavior. A zero DefaultRelevance selects the
// standard conservative fallback.
type Options struct {
	DefaultRelevance float64
}

const standardDefaultRelevance = 0.3

type compiledSector struct {
	id      SectorID
	primary []string
	subs    []compiledSub
}

type compiledSub struct {
	name     string
	keywords []string
}

// Table resolves industry text to sectors and answers relevance between
// sector pairs.
type Table struct {
	sectors          []compiledSector
	primaryByID      map[SectorID][]string
	relevance        map[[2]SectorID]float64
	defaultRelevance float64
}

// Default returns a table with standard options.
func Default() *Table {
	return New(Options{})
}

// New compiles the sector definitions into a lookup table. Keywords are
// normalized once here so resolution only normalizes the query text.
func New(opts Options) *Table {
	def := opts.DefaultRelevance
	if def == 0 {
		def = standardDefaultRelevance
	}

	t := &Table{
		sectors:          make([]compiledSector, 0, len(sectorDefs)),
		primaryByID:      make(map[SectorID][]string, len(sectorDefs)),
		relevance:        make(map[[2]SectorID]float64, len(relevancePairs)*2),
		defaultRelevance: def,
	}
	for _, d := range sectorDefs {
		cs := compiledSector{id: d.id, primary: NormalizeAll(d.primary)}
		for name, kws := range d.subs {
			cs.subs = append(cs.subs, compiledSub{name: name, keywords: NormalizeAll(kws)})
		}
		// map iteration order is random; resolution must be stable
		sort.Slice(cs.subs, func(i, j int) bool { return cs.subs[i].name < cs.subs[j].name })
		t.sectors = append(t.sectors, cs)
		t.primaryByID[d.id] = cs.primary
	}
	for _, p := range relevancePairs {
		t.relevance[[2]SectorID{p.a, p.b}] = p.value
		t.relevance[[2]SectorID{p.b, p.a}] = p.value
	}
	return t
}

// Resolve maps text to the first sector whose keywords match it. The
// boolean is false when no sector matches or the text normalizes to
// empty.
func (t *Table) Resolve(text string) (SectorID, bool) {
	m, ok := t.ResolveDetail(text)
	return m.Sector, ok
}

// ResolveDetail is Resolve with the matched keyword and sub-sector
// attached. Primary keywords are checked before sub-sector keywords
// within each sector.
func (t *Table) ResolveDetail(text string) (Match, bool) {
	n := Normalize(text)
	if n == "" {
		return Match{}, false
	}
	for _, s := range t.sectors {
		for _, kw := range s.primary {
			if ContainsEither(n, kw) {
				return Match{Sector: s.id, Keyword: kw, Primary: true}, true
			}
		}
		for _, sub := range s.subs {
			for _, kw := range sub.keywords {
				if ContainsEither(n, kw) {
					return Match{Sector: s.id, SubSector: sub.name, Keyword: kw}, true
				}
			}
		}
	}
	return Match{}, false
}

// ResolveAny resolves the first text that maps to a sector, in argument
// order.
func (t *Table) ResolveAny(texts ...string) (Match, bool) {
	for _, text := range texts {
		if m, ok := t.ResolveDetail(text); ok {
			return m, true
		}
	}
	return Match{}, false
}

// Relevance scores how related two sectors are: 1.0 for the same
// sector, the curated pair value when one exists, the conservative
// default otherwise.
func (t *Table) Relevance(a, b SectorID) float64 {
	if a == b {
		return 1.0
	}
	if v, ok := t.relevance[[2]SectorID{a, b}]; ok {
		return v
	}
	return t.defaultRelevance
}

// SectorKeywords returns the normalized primary keywords of a sector.
// The returned slice is shared; callers must not modify it.
func (t *Table) SectorKeywords(id SectorID) []string {
	return t.primaryByID[id]
}

// Sectors lists sector ids in resolution order.
func (t *Table) Sectors() []SectorID {
	out := make([]SectorID, len(t.sectors))
	for i, s := range t.sectors {
		out[i] = s.id
	}
	return out
}
