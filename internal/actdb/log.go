package actdb

// appendLog is the ordered sequence of entries; the sole source of
// ordering truth. It is written only by DB.push under the write lock.
type appendLog struct {
	entries []*Entry
}

// append adds e at the next position and returns that position.
func (l *appendLog) append(e *Entry) int {
	l.entries = append(l.entries, e)
	return len(l.entries) - 1
}

// at returns the entry at version, or false if there is none.
func (l *appendLog) at(version int) (*Entry, bool) {
	if version < 0 || version >= len(l.entries) {
		return nil, false
	}
	return l.entries[version], true
}

// length returns the next version to be assigned.
func (l *appendLog) length() int {
	return len(l.entries)
}

// idIndex maps identifiers to entries of either kind.
type idIndex struct {
	byID map[string]*Entry
}

func newIDIndex() *idIndex {
	return &idIndex{byID: make(map[string]*Entry)}
}

func (x *idIndex) put(id string, e *Entry) {
	x.byID[id] = e
}

func (x *idIndex) get(id string) (*Entry, bool) {
	e, ok := x.byID[id]
	return e, ok
}

// seqIndex maps seq numbers to action entries only.
// Seq numbers are contiguous, so a slice indexed by seq suffices.
type seqIndex struct {
	bySeq []*Entry
}

// put stores an action entry at its seq.
// Panics if seq is not the next contiguous position: a gap or a NoSeq
// entry here means the append path is broken.
func (x *seqIndex) put(seq int, e *Entry) {
	if seq != len(x.bySeq) || !e.IsAction() {
		panic(newFault(FaultCodeCorruptIndex, e.ID(), e.Version(),
			"seq index accepts only the next contiguous action seq"))
	}
	x.bySeq = append(x.bySeq, e)
}

func (x *seqIndex) get(seq int) (*Entry, bool) {
	if seq < 0 || seq >= len(x.bySeq) {
		return nil, false
	}
	return x.bySeq[seq], true
}

func (x *seqIndex) length() int {
	return len(x.bySeq)
}
