package dispatch

import "sync"

// discoveryLedger records which object identifiers were returned by a
// discovery call, per document. Operations that address objects must name
// identifiers found here; anything else was invented by the caller and is
// rejected before a process spawns.
type discoveryLedger struct {
	mu   sync.RWMutex
	docs map[string]map[string]struct{}
}

func newDiscoveryLedger() *discoveryLedger {
	return &discoveryLedger{docs: make(map[string]map[string]struct{})}
}

// Record replaces the discovered identifier set for a document. A fresh
// discovery invalidates stale knowledge from earlier calls: the document may
// have changed since.
func (l *discoveryLedger) Record(doc string, ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	l.mu.Lock()
	l.docs[doc] = set
	l.mu.Unlock()
}

// Discovered reports whether id was returned by a prior discovery of doc.
func (l *discoveryLedger) Discovered(doc, id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	set, ok := l.docs[doc]
	if !ok {
		return false
	}
	_, ok = set[id]
	return ok
}

// HasDocument reports whether doc was discovered at all.
func (l *discoveryLedger) HasDocument(doc string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.docs[doc]
	return ok
}
