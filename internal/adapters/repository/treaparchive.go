package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/nvake/drift/pkg/metrics"
)

// Treap-based, in-memory Archive implementation.
//
// Ordering: net engagement DESC, then message id ASC (deterministic).
// In-order traversal of a partition yields the channel's history from
// best to worst, so TopN is a bounded in-order walk.

// treap node
type node struct {
	id    string
	net   int64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aNet, aID) ranks earlier than (bNet, bID).
func less(aNet int64, aID string, bNet int64, bID string) bool {
	if aNet != bNet {
		return aNet > bNet // higher engagement ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// idPriority hashes the message id into a treap heap priority. Hashing keeps
// the tree shape deterministic across runs without biasing toward insert
// order.
func idPriority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, net int64) *node {
	if n == nil {
		return &node{id: id, net: net, prio: idPriority(id), size: 1}
	}
	if less(net, id, n.net, n.id) {
		n.left = insert(n.left, id, net)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, net)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, net int64) *node {
	if n == nil {
		return nil
	}
	if net == n.net && id == n.id {
		// Merge children by rotating the higher priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, net)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, net)
		}
	} else if less(net, id, n.net, n.id) {
		n.left = deleteNode(n.left, id, net)
	} else {
		n.right = deleteNode(n.right, id, net)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order (best first).
func collectTopN(n *node, limit int, entries map[string]Entry, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, entries, out)
	if len(*out) < limit {
		if e, ok := entries[n.id]; ok {
			*out = append(*out, e)
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, entries, out)
	}
}

// partition holds one channel's history.
type partition struct {
	root *node
	byID map[string]Entry
}

// TreapArchive is the in-memory Archive. Partitions are created lazily per
// channel and persist across channel switches.
type TreapArchive struct {
	mu       sync.RWMutex
	channels map[string]*partition
}

// NewTreapArchive constructs an empty archive.
func NewTreapArchive() *TreapArchive {
	return &TreapArchive{channels: make(map[string]*partition)}
}

func (s *TreapArchive) part(channel string) *partition {
	p, ok := s.channels[channel]
	if !ok {
		p = &partition{byID: make(map[string]Entry)}
		s.channels[channel] = p
	}
	return p
}

// Add implements Archive.Add with O(log n) expected time.
func (s *TreapArchive) Add(_ context.Context, channel string, e Entry) bool {
	if e.Net() <= 0 {
		return false
	}

	s.mu.Lock()
	p := s.part(channel)
	if _, exists := p.byID[e.MessageID]; exists {
		s.mu.Unlock()
		return false
	}
	p.byID[e.MessageID] = e
	p.root = insert(p.root, e.MessageID, e.Net())
	size := len(p.byID)
	s.mu.Unlock()

	metrics.UpdateArchiveEntries(channel, size)
	return true
}

// TopN implements Archive.TopN in O(n log total) for the returned prefix.
func (s *TreapArchive) TopN(_ context.Context, channel string, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	start := time.Now()
	defer func() {
		metrics.RecordArchiveQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	p, ok := s.channels[channel]
	if !ok {
		s.mu.RUnlock()
		return []Entry{}, nil
	}
	out := make([]Entry, 0, n)
	collectTopN(p.root, n, p.byID, &out)
	s.mu.RUnlock()

	assignRanksWithTies(out)
	return out, nil
}

// assignRanksWithTies gives equal net engagement equal rank; the next
// distinct value takes the following consecutive rank.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	var prev int64
	for i := range entries {
		if i == 0 || entries[i].Net() != prev {
			rank++
			prev = entries[i].Net()
		}
		entries[i].Rank = rank
	}
}

// Prune implements Archive.Prune. Removal is O(k log n) for k expired
// entries.
func (s *TreapArchive) Prune(_ context.Context, channel string, cutoff time.Time) int {
	s.mu.Lock()
	p, ok := s.channels[channel]
	if !ok {
		s.mu.Unlock()
		return 0
	}
	var expired []Entry
	for _, e := range p.byID {
		if e.CreatedAt.Before(cutoff) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		p.root = deleteNode(p.root, e.MessageID, e.Net())
		delete(p.byID, e.MessageID)
	}
	size := len(p.byID)
	s.mu.Unlock()

	if n := len(expired); n > 0 {
		metrics.RecordArchivePruned(n)
		metrics.UpdateArchiveEntries(channel, size)
	}
	return len(expired)
}

// Reset implements Archive.Reset.
func (s *TreapArchive) Reset(_ context.Context, channel string) {
	s.mu.Lock()
	delete(s.channels, channel)
	s.mu.Unlock()

	metrics.UpdateArchiveEntries(channel, 0)
}

// Count implements Archive.Count.
func (s *TreapArchive) Count(_ context.Context, channel string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.channels[channel]
	if !ok {
		return 0
	}
	return nsize(p.root)
}
