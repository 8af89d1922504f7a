package sim

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when a released world is used or released again.
var ErrClosed = errors.New("world is closed")

const (
	// maxLoad is the average number of nodes per bucket that triggers growth.
	maxLoad = 2
	// maxSize caps the bucket count so it stays a 32-bit power of two.
	maxSize = 1 << 31
)

// World stores every node of a simulation. Nodes are found through a hash
// index with a power-of-two number of buckets (selected with a mask) and
// processed during ticks in the order they were first placed.
//
// Buckets are allocated on first use, so a large size costs nothing until
// nodes are placed.
type World struct {
	Types *TypeData
	Ticks uint64

	size       uint32
	buckets    map[uint32][]*Node
	order      []*Node
	count      int
	tombstones int
	resizes    int
	queue      MessageQueue

	maxInputs  int
	maxOutputs int
	dropped    int
	closed     bool
}

// New allocates a world whose index starts with size buckets.
func New(size uint32, types *TypeData) (*World, error) {
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("world size %d is not a power of two", size)
	}
	if types == nil || types.Default == nil {
		return nil, errors.New("world requires at least one type")
	}
	return &World{
		Types:   types,
		size:    size,
		buckets: make(map[uint32][]*Node),
	}, nil
}

// Size returns the current number of buckets in the index.
func (w *World) Size() uint32 {
	return w.size
}

// Len returns the number of nodes in the world.
func (w *World) Len() int {
	return w.count
}

func (w *World) bucket(loc Location) uint32 {
	return loc.hash() & (w.size - 1)
}

// Get returns the node at loc, or nil when the location is empty.
func (w *World) Get(loc Location) *Node {
	for _, n := range w.buckets[w.bucket(loc)] {
		if n.Location == loc {
			return n
		}
	}
	return nil
}

// Set places a node of type t at loc. An existing node keeps its field values
// when its type is unchanged; otherwise they are reset to zero.
func (w *World) Set(loc Location, t *Type) (*Node, error) {
	if w.closed {
		return nil, ErrClosed
	}
	if n := w.Get(loc); n != nil {
		if n.Type != t {
			n.Type = t
			n.Values = make([]int32, len(t.Fields))
		}
		return n, nil
	}

	n := newNode(loc, t)
	b := w.bucket(loc)
	w.buckets[b] = append(w.buckets[b], n)
	w.order = append(w.order, n)
	w.count++

	if w.count > int(w.size)*maxLoad && w.size < maxSize {
		w.grow()
	}
	return n, nil
}

// Remove deletes the node at loc and reports whether one existed. Messages
// still pending for loc are dropped with it. A closed world holds no nodes.
func (w *World) Remove(loc Location) bool {
	if w.closed {
		return false
	}
	b := w.bucket(loc)
	nodes := w.buckets[b]
	for i, n := range nodes {
		if n.Location != loc {
			continue
		}
		nodes = append(nodes[:i], nodes[i+1:]...)
		if len(nodes) == 0 {
			delete(w.buckets, b)
		} else {
			w.buckets[b] = nodes
		}
		n.removed = true
		w.dropped += w.queue.RemoveTarget(loc)
		w.count--
		w.tombstones++
		if w.tombstones > len(w.order)/2 {
			w.compact()
		}
		return true
	}
	return false
}

// Nodes returns the live nodes in placement order.
// The returned slice is the world's internal storage; callers MUST NOT modify it
// and it is invalidated by the next Set or Remove.
func (w *World) Nodes() []*Node {
	if w.tombstones > 0 {
		w.compact()
	}
	return w.order
}

// Messages returns the pending messages in delivery order.
func (w *World) Messages() []Message {
	return w.queue.Items()
}

// Close releases the world's storage. It returns ErrClosed when called twice.
func (w *World) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	w.buckets = nil
	w.order = nil
	w.queue = MessageQueue{}
	w.count = 0
	return nil
}

// Closed reports whether Close has been called.
func (w *World) Closed() bool {
	return w.closed
}

func (w *World) compact() {
	live := w.order[:0]
	for _, n := range w.order {
		if !n.removed {
			live = append(live, n)
		}
	}
	for i := len(live); i < len(w.order); i++ {
		w.order[i] = nil
	}
	w.order = live
	w.tombstones = 0
}

func (w *World) grow() {
	w.size <<= 1
	w.resizes++
	w.buckets = make(map[uint32][]*Node, len(w.buckets)*2)
	for _, n := range w.order {
		if n.removed {
			continue
		}
		b := w.bucket(n.Location)
		w.buckets[b] = append(w.buckets[b], n)
	}
}
