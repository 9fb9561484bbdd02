package store

// noSlot marks the absence of a slab index, the way a nil pointer marks the
// absence of a node in a pointer-linked list.
const noSlot = -1

// recencyNode is one link in a shard's usage order. Nodes live in a slab
// owned by recencyList and name their neighbours by slab index, never by
// pointer.
type recencyNode struct {
	key  string
	prev int
	next int
}

// recencyList orders a shard's keys from most- to least-recently used. It
// is a doubly linked list laid out in a slab of nodes addressed by index:
// removed slots are threaded onto a free chain and handed back out by later
// inserts, so a list that has grown to its shard's capacity never allocates
// again.
//
// The zero value is not usable; construct with newRecencyList. Methods do
// no locking of their own; the owning shard's lock covers them.
type recencyList struct {
	nodes []recencyNode
	head  int
	tail  int
	free  int // first recycled slot, chained through next
	size  int
}

func newRecencyList(capacity int) recencyList {
	return recencyList{
		nodes: make([]recencyNode, 0, capacity),
		head:  noSlot,
		tail:  noSlot,
		free:  noSlot,
	}
}

// pushFront inserts key at the most-recently-used position and returns the
// slab index of its node. The index stays valid until remove or reset.
func (l *recencyList) pushFront(key string) int {
	idx := l.alloc(key)
	l.linkFront(idx)
	l.size++
	return idx
}

// moveToFront promotes the node at idx to the most-recently-used position.
func (l *recencyList) moveToFront(idx int) {
	if idx == l.head {
		return
	}
	l.unlink(idx)
	l.linkFront(idx)
}

// remove unlinks the node at idx and recycles its slot. The key string is
// dropped so the slab does not pin evicted data.
func (l *recencyList) remove(idx int) {
	l.unlink(idx)
	l.nodes[idx] = recencyNode{prev: noSlot, next: l.free}
	l.free = idx
	l.size--
}

// back returns the index of the least-recently-used node, or noSlot when
// the list is empty.
func (l *recencyList) back() int {
	return l.tail
}

func (l *recencyList) keyAt(idx int) string {
	return l.nodes[idx].key
}

func (l *recencyList) len() int {
	return l.size
}

// reset drops every node but keeps the slab's backing array for reuse.
func (l *recencyList) reset() {
	for i := range l.nodes {
		l.nodes[i] = recencyNode{}
	}
	l.nodes = l.nodes[:0]
	l.head, l.tail, l.free = noSlot, noSlot, noSlot
	l.size = 0
}

// keysMostRecentFirst returns the keys in usage order, most recent first.
func (l *recencyList) keysMostRecentFirst() []string {
	keys := make([]string, 0, l.size)
	for idx := l.head; idx != noSlot; idx = l.nodes[idx].next {
		keys = append(keys, l.nodes[idx].key)
	}
	return keys
}

// alloc takes a slot off the free chain, growing the slab only when none
// are recycled, and stores key in it. The slot is returned unlinked.
func (l *recencyList) alloc(key string) int {
	if l.free != noSlot {
		idx := l.free
		l.free = l.nodes[idx].next
		l.nodes[idx] = recencyNode{key: key, prev: noSlot, next: noSlot}
		return idx
	}
	l.nodes = append(l.nodes, recencyNode{key: key, prev: noSlot, next: noSlot})
	return len(l.nodes) - 1
}

func (l *recencyList) linkFront(idx int) {
	l.nodes[idx].prev = noSlot
	l.nodes[idx].next = l.head
	if l.head != noSlot {
		l.nodes[l.head].prev = idx
	}
	l.head = idx
	if l.tail == noSlot {
		l.tail = idx
	}
}

func (l *recencyList) unlink(idx int) {
	prev, next := l.nodes[idx].prev, l.nodes[idx].next
	if prev != noSlot {
		l.nodes[prev].next = next
	} else {
		l.head = next
	}
	if next != noSlot {
		l.nodes[next].prev = prev
	} else {
		l.tail = prev
	}
}
