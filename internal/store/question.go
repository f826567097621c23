package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/qaforum/apiserver/types"
)

// QuestionRepository handles persistence for questions.
type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionSelect = `
		SELECT q.id, q.author_id, COALESCE(u.username, ''), q.question_text, q.pub_date, q.is_published
		FROM questions q
		LEFT JOIN users u ON u.id = q.author_id`

const questionOrder = `
		ORDER BY q.pub_date DESC, q.id DESC`

// ListPublished returns published questions, newest first.
func (r *QuestionRepository) ListPublished(ctx context.Context, offset, limit int) ([]types.Question, int, error) {
	offset, limit = clampWindow(offset, limit)

	const countQuery = `SELECT COUNT(1) FROM questions WHERE is_published = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, true).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = questionSelect + `
		WHERE q.is_published = $1` + questionOrder + `
		LIMIT $2 OFFSET $3`
	items, err := r.list(ctx, listQuery, limit, true, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByAuthor returns the author's questions in the given publication
// state, newest first.
func (r *QuestionRepository) ListByAuthor(ctx context.Context, authorID int, published bool, offset, limit int) ([]types.Question, int, error) {
	offset, limit = clampWindow(offset, limit)

	const countQuery = `SELECT COUNT(1) FROM questions WHERE author_id = $1 AND is_published = $2`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, authorID, published).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = questionSelect + `
		WHERE q.author_id = $1 AND q.is_published = $2` + questionOrder + `
		LIMIT $3 OFFSET $4`
	items, err := r.list(ctx, listQuery, limit, authorID, published, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *QuestionRepository) list(ctx context.Context, query string, capacity int, args ...any) ([]types.Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]types.Question, 0, capacity)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *QuestionRepository) Get(ctx context.Context, id int) (types.Question, error) {
	const query = questionSelect + `
		WHERE q.id = $1`
	question, err := scanQuestion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Question{}, ErrNotFound
		}
		return types.Question{}, err
	}
	return question, nil
}

func (r *QuestionRepository) Create(ctx context.Context, question types.Question) (types.Question, error) {
	if question.PubDate.IsZero() {
		question.PubDate = utcNow()
	}

	const query = `
		INSERT INTO questions (author_id, question_text, pub_date, is_published)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		idArg(question.AuthorID),
		question.Text,
		question.PubDate,
		question.IsPublished,
	).Scan(&question.ID); err != nil {
		return types.Question{}, err
	}
	return question, nil
}

// UpdateText replaces the question text. Author, publication date and
// publication state are left untouched.
func (r *QuestionRepository) UpdateText(ctx context.Context, id int, text string) error {
	const query = `UPDATE questions SET question_text = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, text, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM questions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// SetPublished updates the publication flag of every listed question and
// returns the ids that exist.
func (r *QuestionRepository) SetPublished(ctx context.Context, ids []int, published bool) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, published)
	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := `UPDATE questions SET is_published = $1 WHERE id IN (` + strings.Join(placeholders, ", ") + `) RETURNING id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updated := make([]int, 0, len(ids))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updated = append(updated, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return updated, nil
}

func scanQuestion(row rowScanner) (types.Question, error) {
	var question types.Question
	var authorID sql.NullInt64
	if err := row.Scan(
		&question.ID,
		&authorID,
		&question.AuthorUsername,
		&question.Text,
		&question.PubDate,
		&question.IsPublished,
	); err != nil {
		return types.Question{}, err
	}
	question.AuthorID = nullableID(authorID)
	return question, nil
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func clampWindow(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}
	return offset, limit
}
