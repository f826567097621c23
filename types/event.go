package types

import "time"

// EventType names a forum lifecycle event.
type EventType string

const (
	EventQuestionCreated     EventType = "question.created"
	EventQuestionUpdated     EventType = "question.updated"
	EventQuestionDeleted     EventType = "question.deleted"
	EventQuestionPublished   EventType = "question.published"
	EventQuestionUnpublished EventType = "question.unpublished"
	EventCommentCreated      EventType = "comment.created"
	EventUserRegistered      EventType = "user.registered"
)

// Event is emitted after a successful write. Zero ids are omitted.
type Event struct {
	Type       EventType `json:"type"`
	UserID     int       `json:"user_id,omitempty"`
	QuestionID int       `json:"question_id,omitempty"`
	CommentID  int       `json:"comment_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
