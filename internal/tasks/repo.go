package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	ErrTitleRequired = errors.New("title required")
	ErrNotFound      = errors.New("task not found")
)

type Repository interface {
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	Create(ctx context.Context, title, description string) (Task, error)
	Update(ctx context.Context, id int64, p Patch) (Task, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}

// InMemoryRepo keeps tasks in insertion order. A new id is the last
// element's id plus one, so ids can be reused after deleting the tail.
type InMemoryRepo struct {
	mu    sync.Mutex
	tasks []Task
}

func NewInMemoryRepo(seed ...Task) *InMemoryRepo {
	r := &InMemoryRepo{tasks: make([]Task, 0, len(seed))}
	r.tasks = append(r.tasks, seed...)
	return r
}

// DemoTasks are the two tasks a fresh in-memory store starts with.
func DemoTasks() []Task {
	return []Task{
		{ID: 1, Title: "buy groceries", Description: "Milk, Cheese, Pizza, Fruit, Tylenol"},
		{ID: 2, Title: "learn python", Description: "Need to find a good Python tutorial on the web"},
	}
}

func (r *InMemoryRepo) List(_ context.Context) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

func (r *InMemoryRepo) Get(_ context.Context, id int64) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return r.tasks[i], nil
}

func (r *InMemoryRepo) Create(_ context.Context, title, description string) (Task, error) {
	if isBlank(title) {
		return Task{}, ErrTitleRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := int64(1)
	if n := len(r.tasks); n > 0 {
		id = r.tasks[n-1].ID + 1
	}
	t := Task{
		ID:          id,
		Title:       title,
		Description: description,
	}
	r.tasks = append(r.tasks, t)
	return t, nil
}

func (r *InMemoryRepo) Update(_ context.Context, id int64, p Patch) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	if err := p.validate(); err != nil {
		return Task{}, err
	}
	r.tasks[i] = p.apply(r.tasks[i])
	return r.tasks[i], nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return nil
}

func (r *InMemoryRepo) Close() error { return nil }

func (r *InMemoryRepo) indexOf(id int64) int {
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
