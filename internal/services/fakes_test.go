package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/qaforum/apiserver/internal/storage"
	"github.com/qaforum/apiserver/internal/store"
	"github.com/qaforum/apiserver/types"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int
	users  []types.User
	// createErr is returned by Create when set.
	createErr error
}

func (m *memUsers) GetByID(_ context.Context, id int) (types.User, error) {
	return m.find(func(u types.User) bool { return u.ID == id })
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (types.User, error) {
	return m.find(func(u types.User) bool { return u.Username == username })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	return m.find(func(u types.User) bool { return u.Email == email })
}

func (m *memUsers) find(match func(types.User) bool) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return types.User{}, m.createErr
	}
	m.nextID++
	user.ID = m.nextID
	m.users = append(m.users, user)
	return user, nil
}

type memQuestions struct {
	mu        sync.Mutex
	nextID    int
	questions map[int]types.Question
	clock     time.Time
}

func newMemQuestions() *memQuestions {
	return &memQuestions{
		questions: make(map[int]types.Question),
		clock:     time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// add stores q directly, bypassing the service.
func (m *memQuestions) add(q types.Question) types.Question {
	created, _ := m.Create(context.Background(), q)
	return created
}

func (m *memQuestions) filter(match func(types.Question) bool, offset, limit int) ([]types.Question, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []types.Question
	for _, q := range m.questions {
		if match(q) {
			all = append(all, q)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].PubDate.Equal(all[j].PubDate) {
			return all[i].PubDate.After(all[j].PubDate)
		}
		return all[i].ID > all[j].ID
	})
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total
}

func (m *memQuestions) ListPublished(_ context.Context, offset, limit int) ([]types.Question, int, error) {
	items, total := m.filter(func(q types.Question) bool { return q.IsPublished }, offset, limit)
	return items, total, nil
}

func (m *memQuestions) ListByAuthor(_ context.Context, authorID int, published bool, offset, limit int) ([]types.Question, int, error) {
	items, total := m.filter(func(q types.Question) bool {
		return q.IsAuthoredBy(authorID) && q.IsPublished == published
	}, offset, limit)
	return items, total, nil
}

func (m *memQuestions) Get(_ context.Context, id int) (types.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return types.Question{}, store.ErrNotFound
	}
	return q, nil
}

func (m *memQuestions) Create(_ context.Context, q types.Question) (types.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	q.ID = m.nextID
	if q.PubDate.IsZero() {
		m.clock = m.clock.Add(time.Minute)
		q.PubDate = m.clock
	}
	m.questions[q.ID] = q
	return q, nil
}

func (m *memQuestions) UpdateText(_ context.Context, id int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return store.ErrNotFound
	}
	q.Text = text
	m.questions[id] = q
	return nil
}

func (m *memQuestions) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

func (m *memQuestions) SetPublished(_ context.Context, ids []int, published bool) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated []int
	for _, id := range ids {
		q, ok := m.questions[id]
		if !ok {
			continue
		}
		q.IsPublished = published
		m.questions[id] = q
		updated = append(updated, id)
	}
	return updated, nil
}

type memComments struct {
	mu       sync.Mutex
	nextID   int
	comments []types.Comment
}

func (m *memComments) ListByQuestion(_ context.Context, questionID int) ([]types.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Comment
	for i := len(m.comments) - 1; i >= 0; i-- {
		c := m.comments[i]
		if c.QuestionID != nil && *c.QuestionID == questionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memComments) Create(_ context.Context, c types.Comment) (types.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.PubDate = time.Now().UTC()
	m.comments = append(m.comments, c)
	return c, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []types.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event types.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) eventTypes() []types.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type memObjectStore struct {
	bucket   string
	ensured  bool
	objects  map[string][]byte
	putErr   error
	lastType string
}

func (m *memObjectStore) EnsureBucket(context.Context) error {
	m.ensured = true
	return nil
}

func (m *memObjectStore) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return err
	}
	if n != size {
		return errors.New("size mismatch")
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = buf.Bytes()
	m.lastType = contentType
	return nil
}

func (m *memObjectStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memObjectStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjectStore) Bucket() string {
	return m.bucket
}

func intPtr(v int) *int {
	return &v
}
