package types

import "time"

// Question is a forum question. Questions start unpublished and are
// published through administration.
type Question struct {
	// ID is the unique identifier of the question.
	ID int `json:"id" db:"id"`

	// AuthorID references the user who wrote the question. It is nil once
	// the author has been deleted.
	AuthorID *int `json:"author_id" db:"author_id"`

	// AuthorUsername is the author's username, resolved at read time.
	AuthorUsername string `json:"author,omitempty" db:"-"`

	// Text is the question body.
	Text string `json:"question_text" db:"question_text"`

	// PubDate orders questions newest first.
	PubDate time.Time `json:"pub_date" db:"pub_date"`

	// IsPublished marks the question as visible in the public list.
	IsPublished bool `json:"is_published" db:"is_published"`
}

// IsAuthoredBy reports whether userID wrote the question.
func (q Question) IsAuthoredBy(userID int) bool {
	return q.AuthorID != nil && userID > 0 && *q.AuthorID == userID
}
