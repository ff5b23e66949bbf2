package assemble

import "sync"

// DedupSet tracks game ids already emitted during a crawl run. It grows
// monotonically and guarantees at-most-once emission per id for the whole
// run, regardless of whether a repeat comes from a page re-fetch or from the
// same game appearing under another category. The orchestrator owns the set;
// the extractor and assembler only consult it.
type DedupSet struct {
	mu  sync.Mutex
	ids map[int]struct{}
}

func NewDedupSet() *DedupSet {
	return &DedupSet{ids: make(map[int]struct{})}
}

// Contains reports whether id was already claimed.
func (d *DedupSet) Contains(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.ids[id]
	return ok
}

// Add claims id. It returns true on the first occurrence and false when the
// id was already present.
func (d *DedupSet) Add(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.ids[id]; ok {
		return false
	}
	d.ids[id] = struct{}{}
	return true
}

// Len is the number of distinct ids claimed so far.
func (d *DedupSet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}
