package services_test

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogforge/apperrors"
	"blogforge/models"
	"blogforge/recency"
)

// fakeBlogStore keeps blog records in memory with the same observable
// behavior as the Mongo repository.
type fakeBlogStore struct {
	mu        sync.Mutex
	blogs     map[primitive.ObjectID]models.Blog
	upsertErr error
}

func newFakeBlogStore() *fakeBlogStore {
	return &fakeBlogStore{blogs: make(map[primitive.ObjectID]models.Blog)}
}

func copyBlog(b models.Blog) models.Blog {
	b.Posts = append([]models.PostSummary(nil), b.Posts...)
	b.Keywords = append([]string(nil), b.Keywords...)
	return b
}

func (s *fakeBlogStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blogs[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Kind: "blog", ID: id.Hex()}
	}
	out := copyBlog(b)
	return &out, nil
}

func (s *fakeBlogStore) Insert(ctx context.Context, b *models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	s.blogs[b.ID] = copyBlog(*b)
	return nil
}

func (s *fakeBlogStore) UpsertByID(ctx context.Context, b *models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	if b.ID.IsZero() {
		return &apperrors.ValidationError{Field: "id", Reason: "blog identity is unassigned"}
	}
	s.blogs[b.ID] = copyBlog(*b)
	return nil
}

func (s *fakeBlogStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blogs[id]; !ok {
		return 0, nil
	}
	delete(s.blogs, id)
	return 1, nil
}

// fakePostStore keeps post records in memory.
type fakePostStore struct {
	mu         sync.Mutex
	posts      map[primitive.ObjectID]models.Post
	replaceErr error
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[primitive.ObjectID]models.Post)}
}

func copyPost(p models.Post) models.Post {
	p.Images = append([]models.Image(nil), p.Images...)
	p.Keywords = append([]string(nil), p.Keywords...)
	p.Authors = append([]string(nil), p.Authors...)
	return p
}

func (s *fakePostStore) FindByIDForBlog(ctx context.Context, id, blogID primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok || p.BlogID != blogID {
		return nil, &apperrors.NotFoundError{Kind: "post", ID: id.Hex()}
	}
	out := copyPost(p)
	return &out, nil
}

func (s *fakePostStore) Insert(ctx context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.posts[p.ID] = copyPost(*p)
	return nil
}

func (s *fakePostStore) Replace(ctx context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return s.replaceErr
	}
	if _, ok := s.posts[p.ID]; !ok {
		return &apperrors.NotFoundError{Kind: "post", ID: p.ID.Hex()}
	}
	s.posts[p.ID] = copyPost(*p)
	return nil
}

func (s *fakePostStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return 0, nil
	}
	delete(s.posts, id)
	return 1, nil
}

func (s *fakePostStore) ListByBlog(ctx context.Context, blogID primitive.ObjectID) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Post
	for _, p := range s.posts {
		if p.BlogID == blogID {
			out = append(out, copyPost(p))
		}
	}
	return out, nil
}

// fakeIndex implements recency.Index as an in-memory stream.
type fakeIndex struct {
	mu        sync.Mutex
	seq       int
	entries   map[string]recency.Entry // token -> entry
	order     []string                 // insertion order, oldest first
	insertErr error
	deleteErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: make(map[string]recency.Entry)}
}

func (f *fakeIndex) Insert(ctx context.Context, e recency.Entry) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.seq++
	token := fmt.Sprintf("%d-0", f.seq)
	f.entries[token] = e
	f.order = append(f.order, token)
	return token, nil
}

func (f *fakeIndex) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.entries, token)
	return nil
}

func (f *fakeIndex) Recent(ctx context.Context, k int64) ([]recency.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recency.Entry
	for i := len(f.order) - 1; i >= 0 && int64(len(out)) < k; i-- {
		if e, ok := f.entries[f.order[i]]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// tokensFor counts live entries for a blog id.
func (f *fakeIndex) tokensFor(blogID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if e.BlogID == blogID {
			n++
		}
	}
	return n
}
