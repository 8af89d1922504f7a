package sim

import (
	"context"
	"fmt"

	"github.com/nullreff/redpile/sim/trace"
)

// BehaviorRunner executes a behavior for one node. It returns true when the
// behavior handled the tick, which stops the remaining behaviors of the type.
type BehaviorRunner interface {
	RunBehavior(b *Behavior, call *Call) (bool, error)
}

// Call is the view a behavior gets of its node during a tick. Sends and field
// assignments are collected and applied by the world afterwards.
type Call struct {
	Node     *Node
	Messages []Message
	Tick     uint64

	sends []Message
	sets  []pendingSet
}

type pendingSet struct {
	node  *Node
	index int
	value int32
}

// Send queues a message for target, delivered delay ticks from now.
func (c *Call) Send(target Location, kind int, value int32, delay int) error {
	if kind < 0 || kind > MaxMessageKind {
		return fmt.Errorf("message kind %d out of range 0..%d", kind, MaxMessageKind)
	}
	if delay < 1 {
		return fmt.Errorf("message delay must be at least 1, got %d", delay)
	}
	if target == c.Node.Location {
		return fmt.Errorf("node (%s) cannot send a message to itself", target)
	}
	c.sends = append(c.sends, Message{
		Source: c.Node.Location,
		Target: target,
		Tick:   c.Tick + uint64(delay),
		Kind:   uint8(kind),
		Value:  value,
	})
	return nil
}

// Set assigns a field of the node once every node has run.
func (c *Call) Set(field string, value int32) error {
	i, kind, ok := c.Node.Type.FieldIndex(field)
	if !ok {
		return &FieldError{Type: c.Node.Type.Name, Field: field}
	}
	if kind == FieldDirection && !IsDirection(value) {
		return fmt.Errorf("'%d' is not a direction", value)
	}
	c.sets = append(c.sets, pendingSet{node: c.Node, index: i, value: value})
	return nil
}

// Sends returns the messages queued so far.
func (c *Call) Sends() []Message {
	return c.sends
}

// Tick advances the world count ticks. During a tick every node runs its
// type's behaviors against the messages due for it; messages sent during the
// tick are delivered no earlier than the next one, and field assignments are
// applied after all nodes have run. A nil trace records nothing. ctx is
// checked between ticks; ticks already run are kept.
func (w *World) Tick(ctx context.Context, count int, runner BehaviorRunner, tt *trace.TickTrace) error {
	if w.closed {
		return ErrClosed
	}
	for ; count > 0; count-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.tick(runner, tt); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) tick(runner BehaviorRunner, tt *trace.TickTrace) error {
	tick := w.Ticks
	tt.RecordTick(tick)

	inbox := make(map[Location][]Message)
	for _, m := range w.queue.PopDue(tick) {
		if w.Get(m.Target) == nil {
			w.dropped++
			continue
		}
		inbox[m.Target] = append(inbox[m.Target], m)
	}

	var sets []pendingSet
	for _, n := range w.Nodes() {
		msgs := inbox[n.Location]
		call := &Call{Node: n, Tick: tick}
		for _, b := range n.Type.Behaviors {
			call.Messages = filterMessages(msgs, b)
			handled, err := runner.RunBehavior(b, call)
			if err != nil {
				return fmt.Errorf("tick %d: node (%s) behavior '%s': %w", tick, n.Location, b.Name, err)
			}
			if handled {
				break
			}
		}

		if len(msgs) > w.maxInputs {
			w.maxInputs = len(msgs)
		}
		if len(call.sends) > w.maxOutputs {
			w.maxOutputs = len(call.sends)
		}
		if tt.Verbose() {
			tt.RecordNode(trace.NodeRecord{Tick: tick, Node: n.String(), Inputs: len(msgs), Outputs: len(call.sends)})
		}
		for _, m := range call.sends {
			w.queue.Enqueue(m)
			if tt.Verbose() {
				tt.RecordSend(trace.SendRecord{Tick: tick, Message: m.String(), Due: m.Tick})
			}
		}
		sets = append(sets, call.sets...)
	}

	for _, s := range sets {
		if s.node.removed {
			continue
		}
		s.node.Values[s.index] = s.value
		tt.RecordSet(trace.SetRecord{
			Tick:  tick,
			Node:  s.node.String(),
			Field: s.node.Type.Fields[s.index].Name,
			Value: s.value,
		})
	}

	w.Ticks++
	return nil
}

func filterMessages(msgs []Message, b *Behavior) []Message {
	if b.Mask == 0 {
		return msgs
	}
	var out []Message
	for _, m := range msgs {
		if b.Accepts(m.Kind) {
			out = append(out, m)
		}
	}
	return out
}
