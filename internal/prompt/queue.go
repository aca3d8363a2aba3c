package prompt

import (
	"sort"

	"neighborlift/internal/model"

	"github.com/google/uuid"
)

// Queue holds pending prompt items from both producers merged into one
// sequence: unique by id, sorted ascending by sort date. Equal sort dates
// keep their relative insertion order. First-seen wins: enqueueing an id
// that is already present is a no-op, the stored copy is not overwritten.
//
// The queue does no locking of its own; the owning Coordinator serializes
// all access.
type Queue struct {
	items []model.PromptItem
	ids   map[uuid.UUID]struct{}
}

func NewQueue() *Queue {
	return &Queue{
		items: make([]model.PromptItem, 0, 8),
		ids:   make(map[uuid.UUID]struct{}, 8),
	}
}

// Enqueue inserts the item in sort-date order. Returns false when an item
// with the same id is already queued.
func (q *Queue) Enqueue(item model.PromptItem) bool {
	id := item.ID()
	if _, dup := q.ids[id]; dup {
		return false
	}
	q.ids[id] = struct{}{}
	q.items = append(q.items, item)
	sort.SliceStable(q.items, func(i, j int) bool {
		return q.items[i].SortDate().Before(q.items[j].SortDate())
	})
	return true
}

// Dequeue removes and returns the earliest item.
func (q *Queue) Dequeue() (model.PromptItem, bool) {
	if len(q.items) == 0 {
		return model.PromptItem{}, false
	}
	item := q.items[0]
	q.items[0] = model.PromptItem{}
	q.items = q.items[1:]
	delete(q.ids, item.ID())
	return item, true
}

// Remove drops the item with the given id if present.
func (q *Queue) Remove(id uuid.UUID) bool {
	if _, ok := q.ids[id]; !ok {
		return false
	}
	delete(q.ids, id)
	for i, item := range q.items {
		if item.ID() == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	return true
}

func (q *Queue) Contains(id uuid.UUID) bool {
	_, ok := q.ids[id]
	return ok
}

func (q *Queue) Count() int {
	return len(q.items)
}
