package services

import (
	"context"
	"log/slog"

	"github.com/qaforum/apiserver/internal/store"
	"github.com/qaforum/apiserver/types"
)

// DefaultPageSize is used when a service is built without a page size.
const DefaultPageSize = 5

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	ListPublished(ctx context.Context, offset, limit int) ([]types.Question, int, error)
	ListByAuthor(ctx context.Context, authorID int, published bool, offset, limit int) ([]types.Question, int, error)
	Get(ctx context.Context, id int) (types.Question, error)
	Create(ctx context.Context, question types.Question) (types.Question, error)
	UpdateText(ctx context.Context, id int, text string) error
	Delete(ctx context.Context, id int) error
	SetPublished(ctx context.Context, ids []int, published bool) ([]int, error)
}

// QuestionService encapsulates question use-cases and their visibility rules.
type QuestionService struct {
	repo     QuestionRepository
	events   emitter
	pageSize int
}

func NewQuestionService(repo QuestionRepository, pageSize int, publisher EventPublisher, logger *slog.Logger) *QuestionService {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &QuestionService{
		repo:     repo,
		events:   newEmitter(publisher, logger),
		pageSize: pageSize,
	}
}

// PageSize returns the number of questions per listing page.
func (s *QuestionService) PageSize() int {
	return s.pageSize
}

// ListPublished returns one page of published questions, newest first.
func (s *QuestionService) ListPublished(ctx context.Context, page int) (types.Page[types.Question], error) {
	items, total, err := s.repo.ListPublished(ctx, types.Offset(page, s.pageSize), s.pageSize)
	if err != nil {
		return types.Page[types.Question]{}, err
	}
	return s.page(items, total, page)
}

// ListDrafts returns the viewer's unpublished questions.
func (s *QuestionService) ListDrafts(ctx context.Context, viewer types.Viewer, page int) (types.Page[types.Question], error) {
	if !viewer.Authenticated() {
		return types.Page[types.Question]{}, ErrAuthRequired
	}
	items, total, err := s.repo.ListByAuthor(ctx, viewer.UserID, false, types.Offset(page, s.pageSize), s.pageSize)
	if err != nil {
		return types.Page[types.Question]{}, err
	}
	return s.page(items, total, page)
}

func (s *QuestionService) page(items []types.Question, total, page int) (types.Page[types.Question], error) {
	if page < 1 {
		page = 1
	}
	result := types.Page[types.Question]{
		Items:    items,
		Page:     page,
		PageSize: s.pageSize,
		Total:    total,
	}
	if page > result.NumPages() {
		return types.Page[types.Question]{}, ErrPageOutOfRange
	}
	return result, nil
}

// Get resolves a question the viewer is allowed to see. Missing and hidden
// questions both yield store.ErrNotFound.
func (s *QuestionService) Get(ctx context.Context, viewer types.Viewer, id int) (types.Question, error) {
	question, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Question{}, err
	}
	if !CanView(viewer, question) {
		return types.Question{}, store.ErrNotFound
	}
	return question, nil
}

// GetForManage resolves a question the viewer may edit or delete.
func (s *QuestionService) GetForManage(ctx context.Context, viewer types.Viewer, id int) (types.Question, error) {
	if !viewer.Authenticated() {
		return types.Question{}, ErrAuthRequired
	}
	question, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Question{}, err
	}
	if !CanManage(viewer, question) {
		return types.Question{}, store.ErrNotFound
	}
	return question, nil
}

// Create stores a new unpublished question written by viewer.
func (s *QuestionService) Create(ctx context.Context, viewer types.Viewer, text string) (types.Question, error) {
	if !viewer.Authenticated() {
		return types.Question{}, ErrAuthRequired
	}
	text, err := validateQuestionText(text)
	if err != nil {
		return types.Question{}, err
	}

	authorID := viewer.UserID
	question, err := s.repo.Create(ctx, types.Question{
		AuthorID:    &authorID,
		Text:        text,
		IsPublished: false,
	})
	if err != nil {
		return types.Question{}, err
	}
	question.AuthorUsername = viewer.Username

	s.events.emit(ctx, types.Event{Type: types.EventQuestionCreated, QuestionID: question.ID, UserID: viewer.UserID})
	return question, nil
}

// Update replaces the text of a question the viewer may manage.
func (s *QuestionService) Update(ctx context.Context, viewer types.Viewer, id int, text string) (types.Question, error) {
	question, err := s.GetForManage(ctx, viewer, id)
	if err != nil {
		return types.Question{}, err
	}
	text, err = validateQuestionText(text)
	if err != nil {
		return types.Question{}, err
	}
	if err := s.repo.UpdateText(ctx, question.ID, text); err != nil {
		return types.Question{}, err
	}
	question.Text = text

	s.events.emit(ctx, types.Event{Type: types.EventQuestionUpdated, QuestionID: question.ID, UserID: viewer.UserID})
	return question, nil
}

// Delete removes a question the viewer may manage. Its comments remain
// stored without a question.
func (s *QuestionService) Delete(ctx context.Context, viewer types.Viewer, id int) error {
	question, err := s.GetForManage(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, question.ID); err != nil {
		return err
	}

	s.events.emit(ctx, types.Event{Type: types.EventQuestionDeleted, QuestionID: question.ID, UserID: viewer.UserID})
	return nil
}

// SetPublished changes the publication state of the given questions and
// returns the ids that were updated. It is an administrative operation and
// performs no viewer checks.
func (s *QuestionService) SetPublished(ctx context.Context, ids []int, published bool) ([]int, error) {
	updated, err := s.repo.SetPublished(ctx, ids, published)
	if err != nil {
		return nil, err
	}

	eventType := types.EventQuestionUnpublished
	if published {
		eventType = types.EventQuestionPublished
	}
	for _, id := range updated {
		s.events.emit(ctx, types.Event{Type: eventType, QuestionID: id})
	}
	return updated, nil
}
