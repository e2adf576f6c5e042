package crawl

// Queue is a FIFO of PageIds that never holds the same id twice, even after
// the id was dequeued.
type Queue struct {
	items []string
	seen  map[string]bool
	idx   int
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{seen: make(map[string]bool)}
}

// Add enqueues id unless it was seen before. Reports whether it was added.
func (q *Queue) Add(id string) bool {
	if q.seen[id] {
		return false
	}
	q.seen[id] = true
	q.items = append(q.items, id)
	return true
}

// HasNext reports whether unprocessed ids remain.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next id and advances. Call only when HasNext is true.
func (q *Queue) Next() string {
	id := q.items[q.idx]
	q.idx++
	return id
}
