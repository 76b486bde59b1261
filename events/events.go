// Package events defines the activity event envelopes published after
// successful writes. Publishing is fire-and-forget: consumers feed
// dashboards and caches, never the write path.
package events

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	PostCreated     EventType = "post.created"
	PostUpdated     EventType = "post.updated"
	PostDeleted     EventType = "post.deleted"
	BlogPublished   EventType = "blog.published"
	BlogUnpublished EventType = "blog.unpublished"
	BlogDeleted     EventType = "blog.deleted"
)

// BaseEvent is the envelope shared by every event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

func (e BaseEvent) GetType() EventType { return e.Type }

// PostEvent reports a post lifecycle change.
type PostEvent struct {
	BaseEvent
	PostID primitive.ObjectID `json:"post_id"`
	BlogID primitive.ObjectID `json:"blog_id"`
	Title  string             `json:"title"`
	Slug   string             `json:"slug"`
	Public bool               `json:"public"`
}

// BlogEvent reports a blog visibility or lifecycle change.
type BlogEvent struct {
	BaseEvent
	BlogID primitive.ObjectID `json:"blog_id"`
	Title  string             `json:"title"`
	Owner  string             `json:"owner"`
	Public bool               `json:"public"`
}
