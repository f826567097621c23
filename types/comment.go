package types

import "time"

// Comment is an answer written by a logged-in user on a published question.
type Comment struct {
	// ID is the unique identifier of the comment.
	ID int `json:"id" db:"id"`

	// AuthorID references the user who wrote the comment, nil once the
	// author has been deleted.
	AuthorID *int `json:"author_id" db:"author_id"`

	// AuthorUsername is the author's username, resolved at read time.
	AuthorUsername string `json:"author,omitempty" db:"-"`

	// QuestionID references the question the comment answers. It is nil
	// once the question has been deleted.
	QuestionID *int `json:"question_id" db:"question_id"`

	// Text is the comment body.
	Text string `json:"comment_text" db:"comment_text"`

	// PubDate is set once when the comment is stored.
	PubDate time.Time `json:"pub_date" db:"pub_date"`
}
