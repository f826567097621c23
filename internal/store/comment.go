package store

import (
	"context"
	"database/sql"

	"github.com/qaforum/apiserver/types"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListByQuestion returns the question's comments, newest first.
func (r *CommentRepository) ListByQuestion(ctx context.Context, questionID int) ([]types.Comment, error) {
	const query = `
		SELECT c.id, c.author_id, COALESCE(u.username, ''), c.question_id, c.comment_text, c.pub_date
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.question_id = $1
		ORDER BY c.pub_date DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0)
	for rows.Next() {
		var comment types.Comment
		var authorID, qID sql.NullInt64
		if err := rows.Scan(
			&comment.ID,
			&authorID,
			&comment.AuthorUsername,
			&qID,
			&comment.Text,
			&comment.PubDate,
		); err != nil {
			return nil, err
		}
		comment.AuthorID = nullableID(authorID)
		comment.QuestionID = nullableID(qID)
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

// Create inserts a comment. PubDate is always assigned here.
func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.PubDate = utcNow()

	const query = `
		INSERT INTO comments (author_id, question_id, comment_text, pub_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		idArg(comment.AuthorID),
		idArg(comment.QuestionID),
		comment.Text,
		comment.PubDate,
	).Scan(&comment.ID); err != nil {
		return types.Comment{}, err
	}
	return comment, nil
}
