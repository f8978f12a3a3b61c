package scheduler

// idLedger remembers recently cancelled request ids so stale loader
// completions can be suppressed. Insertion order is kept so pruning can
// evict oldest first.
type idLedger struct {
	ids   map[string]struct{}
	order []string
}

func newIDLedger() *idLedger {
	return &idLedger{ids: make(map[string]struct{})}
}

func (l *idLedger) add(id string) {
	if _, ok := l.ids[id]; ok {
		return
	}
	l.ids[id] = struct{}{}
	l.order = append(l.order, id)
}

func (l *idLedger) contains(id string) bool {
	_, ok := l.ids[id]
	return ok
}

func (l *idLedger) size() int {
	return len(l.ids)
}

// prune evicts oldest entries once the ledger exceeds limit, shrinking it
// down to half the limit. Returns the number of evicted ids.
func (l *idLedger) prune(limit int) int {
	if limit <= 0 || len(l.ids) <= limit {
		return 0
	}
	toRemove := len(l.ids) - limit/2
	for _, id := range l.order[:toRemove] {
		delete(l.ids, id)
	}
	l.order = append([]string(nil), l.order[toRemove:]...)
	return toRemove
}
