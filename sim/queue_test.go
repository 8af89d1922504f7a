package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func msg(tick uint64, value int32) Message {
	return Message{Source: NewLocation(0, 0, 0), Target: NewLocation(1, 0, 0), Tick: tick, Value: value}
}

func TestMessageQueue_Enqueue_OrdersByTickStableOnTies(t *testing.T) {
	// GIVEN messages enqueued out of tick order, two of them on tick 3
	mq := &MessageQueue{}
	mq.Enqueue(msg(3, 1))
	mq.Enqueue(msg(1, 2))
	mq.Enqueue(msg(3, 3))
	mq.Enqueue(msg(2, 4))

	// THEN items are ordered by tick and ties keep send order
	var values []int32
	for _, m := range mq.Items() {
		values = append(values, m.Value)
	}
	assert.Equal(t, []int32{2, 4, 1, 3}, values)
}

func TestMessageQueue_PopDue_RemovesOnlyDueMessages(t *testing.T) {
	// GIVEN messages for ticks 1, 2 and 5
	mq := &MessageQueue{}
	mq.Enqueue(msg(1, 1))
	mq.Enqueue(msg(2, 2))
	mq.Enqueue(msg(5, 5))

	// WHEN messages due by tick 2 are popped
	due := mq.PopDue(2)

	// THEN the first two are returned and the last remains queued
	assert.Len(t, due, 2)
	assert.Equal(t, int32(1), due[0].Value)
	assert.Equal(t, int32(2), due[1].Value)
	assert.Equal(t, 1, mq.Len())
	assert.Nil(t, mq.PopDue(4))
}

func TestMessageQueue_RemoveTarget(t *testing.T) {
	mq := &MessageQueue{}
	mq.Enqueue(msg(1, 1))
	other := msg(1, 2)
	other.Target = NewLocation(5, 5, 5)
	mq.Enqueue(other)

	dropped := mq.RemoveTarget(NewLocation(1, 0, 0))

	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, mq.Len())
	assert.Equal(t, int32(2), mq.Items()[0].Value)
}
