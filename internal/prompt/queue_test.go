package prompt

import (
	"testing"
	"time"

	"neighborlift/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func completionItem(id uuid.UUID, dueAt time.Time) model.PromptItem {
	return model.NewCompletionItem(&model.CompletionPrompt{
		ID:           id,
		ReminderID:   id,
		RequestType:  model.RequestTypeRide,
		RequestID:    uuid.New(),
		RequestTitle: "Ride to the airport",
		DueAt:        dueAt,
	})
}

func reviewItem(id uuid.UUID, createdAt time.Time) model.PromptItem {
	return model.NewReviewItem(&model.ReviewPrompt{
		ID:            id,
		RequestType:   model.RequestTypeFavor,
		RequestID:     uuid.New(),
		RequestTitle:  "Water my plants",
		FulfillerID:   uuid.New(),
		FulfillerName: "Sam",
		CreatedAt:     createdAt,
	})
}

func TestQueue_EnqueueDeduplicates(t *testing.T) {
	q := NewQueue()
	id := uuid.New()
	t0 := time.Now()

	assert.True(t, q.Enqueue(completionItem(id, t0)))
	assert.False(t, q.Enqueue(completionItem(id, t0.Add(time.Hour))))
	assert.Equal(t, 1, q.Count())

	// First-seen wins: the stored copy keeps the original due time.
	item, ok := q.Dequeue()
	assert.True(t, ok)
	assert.True(t, item.SortDate().Equal(t0))
}

func TestQueue_DequeueReturnsEarliest(t *testing.T) {
	q := NewQueue()
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(2 * time.Hour)

	a := completionItem(uuid.New(), t1)
	b := reviewItem(uuid.New(), t0)

	// Enqueue the later item first; the earlier one must still come out first.
	q.Enqueue(a)
	q.Enqueue(b)

	first, ok := q.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, b.ID(), first.ID())

	second, ok := q.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, a.ID(), second.ID())

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestQueue_EqualSortDatesKeepInsertionOrder(t *testing.T) {
	q := NewQueue()
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	first := completionItem(uuid.New(), at)
	second := reviewItem(uuid.New(), at)
	third := completionItem(uuid.New(), at)

	q.Enqueue(first)
	q.Enqueue(second)
	q.Enqueue(third)

	for _, want := range []model.PromptItem{first, second, third} {
		got, ok := q.Dequeue()
		assert.True(t, ok)
		assert.Equal(t, want.ID(), got.ID())
	}
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue()
	at := time.Now()
	item := completionItem(uuid.New(), at)
	other := reviewItem(uuid.New(), at.Add(time.Minute))

	q.Enqueue(item)
	q.Enqueue(other)

	assert.True(t, q.Remove(item.ID()))
	assert.False(t, q.Remove(item.ID()))
	assert.Equal(t, 1, q.Count())
	assert.False(t, q.Contains(item.ID()))
	assert.True(t, q.Contains(other.ID()))

	// The removed id can be enqueued again.
	assert.True(t, q.Enqueue(item))
}

func TestQueue_DequeueEmpty(t *testing.T) {
	q := NewQueue()
	_, ok := q.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Count())
}
