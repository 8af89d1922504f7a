// Implements the MessageQueue, which holds messages sent by behaviors until
// the tick they are delivered on.

package sim

import "fmt"

// MaxMessageKind is the largest message kind a behavior mask can select.
const MaxMessageKind = 31

// Message is a value sent from one node to another, delivered on Tick.
type Message struct {
	Source Location
	Target Location
	Tick   uint64 // Tick the message is delivered on
	Kind   uint8  // 0..MaxMessageKind
	Value  int32
}

func (m Message) String() string {
	return fmt.Sprintf("(%s) => (%s) kind:%d value:%d tick:%d", m.Source, m.Target, m.Kind, m.Value, m.Tick)
}

// MessageQueue is a queue of pending messages ordered by delivery tick.
// Messages for the same tick keep the order they were sent in.
type MessageQueue struct {
	queue []Message
}

// Enqueue inserts a message after every message due on or before its tick.
func (mq *MessageQueue) Enqueue(m Message) {
	i := len(mq.queue)
	for i > 0 && mq.queue[i-1].Tick > m.Tick {
		i--
	}
	mq.queue = append(mq.queue, Message{})
	copy(mq.queue[i+1:], mq.queue[i:])
	mq.queue[i] = m
}

// Len returns the number of pending messages.
func (mq *MessageQueue) Len() int {
	return len(mq.queue)
}

// Items returns the queue contents in delivery order.
// The returned slice is the queue's internal storage; callers MUST NOT modify it.
func (mq *MessageQueue) Items() []Message {
	return mq.queue
}

// PopDue removes and returns every message due on or before tick.
func (mq *MessageQueue) PopDue(tick uint64) []Message {
	n := 0
	for n < len(mq.queue) && mq.queue[n].Tick <= tick {
		n++
	}
	if n == 0 {
		return nil
	}
	due := make([]Message, n)
	copy(due, mq.queue[:n])
	mq.queue = mq.queue[n:]
	return due
}

// RemoveTarget drops every pending message addressed to loc and returns how
// many were dropped.
func (mq *MessageQueue) RemoveTarget(loc Location) int {
	kept := mq.queue[:0]
	for _, m := range mq.queue {
		if m.Target != loc {
			kept = append(kept, m)
		}
	}
	dropped := len(mq.queue) - len(kept)
	mq.queue = kept
	return dropped
}
