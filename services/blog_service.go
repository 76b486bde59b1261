package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogforge/apperrors"
	"blogforge/eventbus"
	"blogforge/events"
	"blogforge/logger"
	"blogforge/models"
	"blogforge/recency"
)

// BlogService is the consistency engine. It owns the blog record, the
// embedded post summary array and the blog's recency index membership.
// All writes to the same blog identity are serialized through a keyed
// mutex: the store gives the read-modify-write no atomicity of its own.
type BlogService struct {
	blogs BlogStore
	posts PostStore
	rec   *recency.Adapter
	bus   eventbus.Publisher
	topic string

	galleryRoot string
	locks       *keyedMutex
	log         logger.Logger
}

func NewBlogService(blogs BlogStore, posts PostStore, rec *recency.Adapter, bus eventbus.Publisher, topic, galleryRoot string, log logger.Logger) *BlogService {
	return &BlogService{
		blogs:       blogs,
		posts:       posts,
		rec:         rec,
		bus:         bus,
		topic:       topic,
		galleryRoot: galleryRoot,
		locks:       newKeyedMutex(),
		log:         log,
	}
}

// Get loads a blog by identity.
func (s *BlogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	return s.blogs.FindByID(ctx, id)
}

// Create persists a new blog and synchronizes its index membership.
func (s *BlogService) Create(ctx context.Context, cfg models.BlogConfig) (*models.Blog, error) {
	b := models.NewBlog(cfg)
	if err := s.blogs.Insert(ctx, b); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(b.ID.Hex())
	defer unlock()
	if err := s.syncVisibility(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Save persists the blog with upsert semantics keyed by its identity and
// then synchronizes index membership against the current public flag.
// The synchronization runs on every save, not only on creation, so a
// later visibility toggle adds or removes the index entry correctly.
//
// The caller's snapshot may be stale: the summary array, index token and
// creation stamp are taken from the stored record inside the lock, so a
// snapshot loaded before another writer's save cannot clobber them.
func (s *BlogService) Save(ctx context.Context, b *models.Blog) error {
	if b.ID.IsZero() {
		return &apperrors.ValidationError{Field: "id", Reason: "blog identity is unassigned"}
	}
	unlock := s.locks.Lock(b.ID.Hex())
	defer unlock()

	fresh, err := s.reloadLocked(ctx, b.ID)
	if err != nil {
		return err
	}
	if fresh != nil {
		b.Posts = fresh.Posts
		b.RecencyStreamID = fresh.RecencyStreamID
		b.CreatedOn = fresh.CreatedOn
	}
	return s.saveLocked(ctx, b)
}

// reloadLocked fetches the stored record while the identity lock is
// held. A missing record reads as (nil, nil): the first save of an
// identity has nothing to reconcile against.
func (s *BlogService) reloadLocked(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	fresh, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}
	return fresh, nil
}

func (s *BlogService) saveLocked(ctx context.Context, b *models.Blog) error {
	b.PostCount = len(b.Posts)
	if err := s.blogs.UpsertByID(ctx, b); err != nil {
		return err
	}
	return s.syncVisibility(ctx, b)
}

// SavePost merges a post summary produced by the lifecycle manager into
// the blog's embedded array and persists the blog. A summary with a
// known id replaces the existing element in place, keeping positional
// order; an unknown id appends.
//
// The merge runs against the stored record loaded inside the identity
// lock, never against the caller's snapshot: two writers holding
// independently loaded copies of the same blog must both land their
// summaries. On success the caller's snapshot is refreshed to the
// persisted state.
func (s *BlogService) SavePost(ctx context.Context, b *models.Blog, sum models.PostSummary) error {
	if sum.ID.IsZero() {
		return &apperrors.ValidationError{Field: "post.id", Reason: "summary identity is required"}
	}

	unlock := s.locks.Lock(b.ID.Hex())
	defer unlock()

	fresh, err := s.reloadLocked(ctx, b.ID)
	if err != nil {
		return err
	}
	if fresh == nil {
		return &apperrors.NotFoundError{Kind: "blog", ID: b.ID.Hex()}
	}

	created := true
	if existing := fresh.Summary(sum.ID); existing != nil {
		existing.Title = sum.Title
		existing.Slug = sum.Slug
		existing.CreatedOn = sum.CreatedOn
		existing.EditedOn = sum.EditedOn
		existing.Public = sum.Public
		created = false
	} else {
		fresh.Posts = append(fresh.Posts, sum)
	}

	if err := s.saveLocked(ctx, fresh); err != nil {
		return err
	}
	*b = *fresh

	if created {
		s.publishPost(ctx, events.PostCreated, b, sum)
	} else {
		s.publishPost(ctx, events.PostUpdated, b, sum)
	}
	return nil
}

// RemovePost drops a post's summary from the embedded array and persists
// the blog. Removing an id with no summary is a no-op save. Like
// SavePost, the removal is applied to the stored record loaded inside
// the lock, and the caller's snapshot is refreshed on success.
func (s *BlogService) RemovePost(ctx context.Context, b *models.Blog, postID primitive.ObjectID) error {
	unlock := s.locks.Lock(b.ID.Hex())
	defer unlock()

	fresh, err := s.reloadLocked(ctx, b.ID)
	if err != nil {
		return err
	}
	if fresh == nil {
		return &apperrors.NotFoundError{Kind: "blog", ID: b.ID.Hex()}
	}

	var removed *models.PostSummary
	kept := fresh.Posts[:0]
	for i := range fresh.Posts {
		if fresh.Posts[i].ID == postID {
			sum := fresh.Posts[i]
			removed = &sum
			continue
		}
		kept = append(kept, fresh.Posts[i])
	}
	fresh.Posts = kept

	if err := s.saveLocked(ctx, fresh); err != nil {
		return err
	}
	*b = *fresh

	if removed != nil {
		s.publishPost(ctx, events.PostDeleted, b, *removed)
	}
	return nil
}

// syncVisibility reconciles index membership with the public flag. A
// public blog without a live token gets one; a private blog loses its
// entry. Re-running an already-applied transition is a no-op on the
// index. Token changes are persisted immediately so the blog record and
// the index never disagree across a restart.
func (s *BlogService) syncVisibility(ctx context.Context, b *models.Blog) error {
	switch {
	case b.Public && b.RecencyStreamID == "":
		if err := s.rec.Add(ctx, b); err != nil {
			return err
		}
		if err := s.blogs.UpsertByID(ctx, b); err != nil {
			return err
		}
		s.publishBlog(ctx, events.BlogPublished, b)
	case !b.Public && b.RecencyStreamID != "":
		if err := s.rec.Remove(ctx, b); err != nil {
			return err
		}
		if err := s.blogs.UpsertByID(ctx, b); err != nil {
			return err
		}
		s.publishBlog(ctx, events.BlogUnpublished, b)
	}
	return nil
}

// Verify checks the blog's record invariants: the post count matches the
// embedded array and every summary maps to an existing post owned by
// this blog. Violations surface as ConsistencyError; no automatic repair
// is attempted.
func (s *BlogService) Verify(ctx context.Context, b *models.Blog) error {
	if b.PostCount != len(b.Posts) {
		return &apperrors.ConsistencyError{
			BlogID: b.ID.Hex(),
			Detail: fmt.Sprintf("postCount %d != %d embedded summaries", b.PostCount, len(b.Posts)),
		}
	}
	for _, sum := range b.Posts {
		if _, err := s.posts.FindByIDForBlog(ctx, sum.ID, b.ID); err != nil {
			return &apperrors.ConsistencyError{
				BlogID: b.ID.Hex(),
				Detail: fmt.Sprintf("summary %s has no matching post: %v", sum.ID.Hex(), err),
			}
		}
	}
	return nil
}

// DeleteBlogResult reports the non-fatal sub-step failures of a full
// deletion. The engine continues past them but never discards them.
type DeleteBlogResult struct {
	IndexErr error
	FilesErr error
}

// DeleteBlog removes the blog entirely: index entry first (best effort),
// then the on-disk gallery tree (reported but non-blocking), then the
// database record, which must remove exactly one document. Orphaned post
// records are cleaned up afterwards, also best effort.
func (s *BlogService) DeleteBlog(ctx context.Context, b *models.Blog) (DeleteBlogResult, error) {
	unlock := s.locks.Lock(b.ID.Hex())
	defer unlock()

	var res DeleteBlogResult

	if err := s.rec.Remove(ctx, b); err != nil {
		res.IndexErr = err
		s.log.Errorf("recency removal failed for blog %s, continuing: %v", b.ID.Hex(), err)
	}

	dir := filepath.Join(s.galleryRoot, b.ID.Hex())
	if err := os.RemoveAll(dir); err != nil {
		res.FilesErr = &apperrors.ExternalServiceError{Service: "filesystem", Op: "removeAll " + dir, Err: err}
		s.log.Errorf("gallery removal failed for blog %s, continuing: %v", b.ID.Hex(), err)
	}

	n, err := s.blogs.DeleteByID(ctx, b.ID)
	if err != nil {
		return res, err
	}
	if n != 1 {
		return res, &apperrors.ConsistencyError{
			BlogID: b.ID.Hex(),
			Detail: fmt.Sprintf("delete removed %d records, want exactly 1", n),
		}
	}

	if posts, err := s.posts.ListByBlog(ctx, b.ID); err == nil {
		for _, p := range posts {
			if _, err := s.posts.DeleteByID(ctx, p.ID); err != nil {
				s.log.Errorf("orphan post %s cleanup failed: %v", p.ID.Hex(), err)
			}
		}
	} else {
		s.log.Errorf("orphan post listing failed for blog %s: %v", b.ID.Hex(), err)
	}

	s.publishBlog(ctx, events.BlogDeleted, b)
	return res, nil
}

// publishPost and publishBlog are fire-and-forget: a broker failure is
// logged and never fails the write that triggered it.
func (s *BlogService) publishPost(ctx context.Context, t events.EventType, b *models.Blog, sum models.PostSummary) {
	if s.bus == nil {
		return
	}
	ev := events.PostEvent{
		BaseEvent: eventbus.NewBase(t, "blogforge"),
		PostID:    sum.ID,
		BlogID:    b.ID,
		Title:     sum.Title,
		Slug:      sum.Slug,
		Public:    sum.Public,
	}
	s.publish(ctx, ev.ID, ev)
}

func (s *BlogService) publishBlog(ctx context.Context, t events.EventType, b *models.Blog) {
	if s.bus == nil {
		return
	}
	ev := events.BlogEvent{
		BaseEvent: eventbus.NewBase(t, "blogforge"),
		BlogID:    b.ID,
		Title:     b.Title,
		Owner:     b.CreatorName,
		Public:    b.Public,
	}
	s.publish(ctx, ev.ID, ev)
}

func (s *BlogService) publish(ctx context.Context, id string, payload any) {
	ev, err := eventbus.Envelope(id, payload)
	if err != nil {
		s.log.Errorf("event envelope failed: %v", err)
		return
	}
	if err := s.bus.Publish(ctx, s.topic, ev); err != nil {
		s.log.Errorf("event publish failed: %v", err)
	}
}
