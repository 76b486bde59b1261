// Package recency synchronizes blogs against the external visibility-gated
// recency index: an append-only, reverse-chronological stream of the most
// recently active public blogs. A blog owns at most one live entry,
// addressed by the opaque token returned on insertion.
package recency

import (
	"context"

	"blogforge/logger"
	"blogforge/models"
)

// Entry is the payload kept per blog in the index.
type Entry struct {
	BlogID      string `json:"blogId"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Visibility  bool   `json:"visibility"`
	Preview     string `json:"preview"`
	Description string `json:"description"`
}

// Index is the narrow capability offered by the external store.
type Index interface {
	// Insert appends the entry at the head and returns its token.
	Insert(ctx context.Context, e Entry) (string, error)
	// Delete removes the entry addressed by token. Deleting an unknown
	// token is a no-op.
	Delete(ctx context.Context, token string) error
	// Recent returns the most recent k entries, newest first.
	Recent(ctx context.Context, k int64) ([]Entry, error)
}

// Adapter applies the one-live-entry-per-blog rule on top of an Index.
type Adapter struct {
	idx Index
	log logger.Logger
}

func NewAdapter(idx Index, log logger.Logger) *Adapter {
	return &Adapter{idx: idx, log: log}
}

// Add ensures the blog holds exactly one live index entry, replacing any
// stale token first, and stores the fresh token on the blog. Entries are
// not accumulative: a blog has at most one position in the recency
// ordering at a time.
func (a *Adapter) Add(ctx context.Context, b *models.Blog) error {
	if b.RecencyStreamID != "" {
		if err := a.idx.Delete(ctx, b.RecencyStreamID); err != nil {
			return err
		}
		b.RecencyStreamID = ""
	}

	token, err := a.idx.Insert(ctx, EntryForBlog(b))
	if err != nil {
		return err
	}
	b.RecencyStreamID = token
	a.log.Debugf("recency entry added for blog %s (token %s)", b.ID.Hex(), token)
	return nil
}

// Remove deletes the blog's live entry and clears its token. A blog with
// no token is already in the desired state and succeeds as a no-op.
func (a *Adapter) Remove(ctx context.Context, b *models.Blog) error {
	if b.RecencyStreamID == "" {
		return nil
	}
	if err := a.idx.Delete(ctx, b.RecencyStreamID); err != nil {
		return err
	}
	a.log.Debugf("recency entry removed for blog %s (token %s)", b.ID.Hex(), b.RecencyStreamID)
	b.RecencyStreamID = ""
	return nil
}

// Recent exposes the reverse range read of the underlying index.
func (a *Adapter) Recent(ctx context.Context, k int64) ([]Entry, error) {
	return a.idx.Recent(ctx, k)
}

// EntryForBlog projects a blog into its index payload.
func EntryForBlog(b *models.Blog) Entry {
	return Entry{
		BlogID:      b.ID.Hex(),
		Name:        b.Title,
		Owner:       b.CreatorName,
		Visibility:  b.Public,
		Preview:     b.HeaderImageURL,
		Description: b.Description,
	}
}
