package recency_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogforge/logger"
	"blogforge/models"
	"blogforge/recency"
)

// memIndex is an in-memory stand-in for the stream-backed index.
type memIndex struct {
	mu        sync.Mutex
	seq       int
	entries   map[string]recency.Entry
	order     []string
	insertErr error
	deleteErr error
}

func newMemIndex() *memIndex {
	return &memIndex{entries: make(map[string]recency.Entry)}
}

func (m *memIndex) Insert(ctx context.Context, e recency.Entry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return "", m.insertErr
	}
	m.seq++
	token := fmt.Sprintf("%d-0", m.seq)
	m.entries[token] = e
	m.order = append(m.order, token)
	return token, nil
}

func (m *memIndex) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.entries, token)
	return nil
}

func (m *memIndex) Recent(ctx context.Context, k int64) ([]recency.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []recency.Entry
	for i := len(m.order) - 1; i >= 0 && int64(len(out)) < k; i-- {
		if e, ok := m.entries[m.order[i]]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memIndex) live(blogID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.BlogID == blogID {
			n++
		}
	}
	return n
}

func newBlog(title string) *models.Blog {
	return models.NewBlog(models.BlogConfig{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Public:      true,
		CreatorName: "ann",
	})
}

func newAdapter(idx recency.Index) *recency.Adapter {
	return recency.NewAdapter(idx, logger.NewLogger("error"))
}

func TestAddStoresToken(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	a := newAdapter(idx)
	b := newBlog("B")

	require.NoError(t, a.Add(ctx, b))
	assert.NotEmpty(t, b.RecencyStreamID)
	assert.Equal(t, 1, idx.live(b.ID.Hex()))
}

func TestAddReplacesStaleToken(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	a := newAdapter(idx)
	b := newBlog("B")

	require.NoError(t, a.Add(ctx, b))
	first := b.RecencyStreamID

	require.NoError(t, a.Add(ctx, b))
	assert.NotEqual(t, first, b.RecencyStreamID)
	assert.Equal(t, 1, idx.live(b.ID.Hex()), "never more than one live entry per blog")
}

func TestRemoveClearsToken(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	a := newAdapter(idx)
	b := newBlog("B")

	require.NoError(t, a.Add(ctx, b))
	require.NoError(t, a.Remove(ctx, b))
	assert.Empty(t, b.RecencyStreamID)
	assert.Zero(t, idx.live(b.ID.Hex()))
}

func TestRemoveWithoutTokenIsNoop(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	idx.deleteErr = errors.New("must not be called")
	a := newAdapter(idx)
	b := newBlog("B")

	require.NoError(t, a.Remove(ctx, b))
}

func TestAddInsertFailureLeavesTokenEmpty(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	idx.insertErr = errors.New("stream down")
	a := newAdapter(idx)
	b := newBlog("B")

	require.Error(t, a.Add(ctx, b))
	assert.Empty(t, b.RecencyStreamID)
}

func TestRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	a := newAdapter(idx)

	blogs := []*models.Blog{newBlog("one"), newBlog("two"), newBlog("three")}
	for _, b := range blogs {
		require.NoError(t, a.Add(ctx, b))
	}

	got, err := a.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Name)
	assert.Equal(t, "two", got[1].Name)
}

func TestReAddMovesBlogToHead(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	a := newAdapter(idx)

	first := newBlog("first")
	second := newBlog("second")
	require.NoError(t, a.Add(ctx, first))
	require.NoError(t, a.Add(ctx, second))
	require.NoError(t, a.Add(ctx, first))

	got, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "second", got[1].Name)
}

func TestEntryForBlogProjection(t *testing.T) {
	b := models.NewBlog(models.BlogConfig{
		ID:             primitive.NewObjectID(),
		Title:          "T",
		Description:    "about",
		Public:         true,
		CreatorName:    "ann",
		HeaderImageURL: "https://img/x.jpg",
	})

	e := recency.EntryForBlog(b)
	assert.Equal(t, b.ID.Hex(), e.BlogID)
	assert.Equal(t, "T", e.Name)
	assert.Equal(t, "ann", e.Owner)
	assert.Equal(t, "about", e.Description)
	assert.Equal(t, "https://img/x.jpg", e.Preview)
	assert.True(t, e.Visibility)
}
