package services

import (
	"context"
	"log/slog"

	"github.com/qaforum/apiserver/internal/store"
	"github.com/qaforum/apiserver/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	ListByQuestion(ctx context.Context, questionID int) ([]types.Comment, error)
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
}

// CommentService encapsulates answering questions.
type CommentService struct {
	repo      CommentRepository
	questions QuestionRepository
	events    emitter
}

func NewCommentService(repo CommentRepository, questions QuestionRepository, publisher EventPublisher, logger *slog.Logger) *CommentService {
	return &CommentService{
		repo:      repo,
		questions: questions,
		events:    newEmitter(publisher, logger),
	}
}

// ListForQuestion returns the comments of a question, newest first.
func (s *CommentService) ListForQuestion(ctx context.Context, questionID int) ([]types.Comment, error) {
	return s.repo.ListByQuestion(ctx, questionID)
}

// Add stores a comment by viewer on a published question.
func (s *CommentService) Add(ctx context.Context, viewer types.Viewer, questionID int, text string) (types.Comment, error) {
	if !viewer.Authenticated() {
		return types.Comment{}, ErrAuthRequired
	}
	question, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return types.Comment{}, err
	}
	if !CanComment(viewer, question) {
		return types.Comment{}, store.ErrNotFound
	}
	text, err = validateCommentText(text)
	if err != nil {
		return types.Comment{}, err
	}

	authorID := viewer.UserID
	comment, err := s.repo.Create(ctx, types.Comment{
		AuthorID:   &authorID,
		QuestionID: &question.ID,
		Text:       text,
	})
	if err != nil {
		return types.Comment{}, err
	}
	comment.AuthorUsername = viewer.Username

	s.events.emit(ctx, types.Event{
		Type:       types.EventCommentCreated,
		CommentID:  comment.ID,
		QuestionID: question.ID,
		UserID:     viewer.UserID,
	})
	return comment, nil
}
