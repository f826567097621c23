package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qaforum/apiserver/internal/services"
	"github.com/qaforum/apiserver/internal/store"
	"github.com/qaforum/apiserver/types"
)

const formFieldQuestion = "question_text"
const formFieldComment = "comment_text"

// QuestionHandler provides HTTP handlers for questions and their comments.
type QuestionHandler struct {
	questionService *services.QuestionService
	commentService  *services.CommentService
	render          *Renderer
	logger          *slog.Logger
}

// NewQuestionHandler constructs a handler with the provided services.
func NewQuestionHandler(questionService *services.QuestionService, commentService *services.CommentService, render *Renderer, logger *slog.Logger) *QuestionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionHandler{
		questionService: questionService,
		commentService:  commentService,
		render:          render,
		logger:          logger,
	}
}

// QuestionRouter registers question routes under /question.
func QuestionRouter(r chi.Router, handler *QuestionHandler) {
	r.Get("/create/", handler.CreateForm)
	r.Post("/create/", handler.CreateQuestion)
	r.Get("/mine/", handler.ListMine)
	r.Route("/{questionID}", func(r chi.Router) {
		r.Get("/detail/", handler.GetQuestion)
		r.Post("/detail/", handler.CreateComment)
		r.Get("/update/", handler.UpdateForm)
		r.Post("/update/", handler.UpdateQuestion)
		r.Get("/delete/", handler.DeleteConfirm)
		r.Post("/delete/", handler.DeleteQuestion)
	})
}

// QuestionListResponse is the paginated list response payload.
type QuestionListResponse struct {
	Envelope
	Items       []types.Question `json:"items"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
	Total       int              `json:"total"`
	NumPages    int              `json:"num_pages"`
	IsPaginated bool             `json:"is_paginated"`
	HasNext     bool             `json:"has_next"`
	HasPrevious bool             `json:"has_previous"`
}

// QuestionResponse wraps a single question.
type QuestionResponse struct {
	Envelope
	Question types.Question `json:"question"`
}

// QuestionFormResponse is a form pre-filled from a question.
type QuestionFormResponse struct {
	Envelope
	Question types.Question `json:"question"`
	Form     FormDescriptor `json:"form"`
}

// QuestionDetailResponse is a question with its answers. CommentForm is
// set for viewers who may answer.
type QuestionDetailResponse struct {
	Envelope
	Question       types.Question  `json:"question"`
	Comments       []types.Comment `json:"comments"`
	CommentsNotice *NoticeResponse `json:"comments_notice,omitempty"`
	CommentForm    *FormDescriptor `json:"comment_form,omitempty"`
	LoginPrompt    *NoticeResponse `json:"login_prompt,omitempty"`
	CanManage      bool            `json:"can_manage"`
}

// CommentResponse wraps a stored comment.
type CommentResponse struct {
	Envelope
	Comment types.Comment `json:"comment"`
}

func (h *QuestionHandler) listResponse(page types.Page[types.Question]) QuestionListResponse {
	items := page.Items
	if items == nil {
		items = []types.Question{}
	}
	return QuestionListResponse{
		Items:       items,
		Page:        page.Page,
		PageSize:    page.PageSize,
		Total:       page.Total,
		NumPages:    page.NumPages(),
		IsPaginated: page.IsPaginated(),
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
	}
}

// ListQuestions returns the published questions, newest first.
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.questionService.ListPublished(r.Context(), page)
	if err != nil {
		h.fail(w, r, err, "list questions")
		return
	}

	resp := h.listResponse(result)
	if len(resp.Items) == 0 {
		resp.Notices = []NoticeResponse{h.render.Notice(r, types.NoticeInfo, types.MsgQuestionsEmpty)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListMine returns the viewer's unpublished questions. Anonymous viewers
// get an empty page with a login notice.
func (h *QuestionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.questionService.ListDrafts(r.Context(), ViewerFromContext(r.Context()), page)
	if errors.Is(err, services.ErrAuthRequired) {
		resp := h.listResponse(types.Page[types.Question]{Page: defaultPage, PageSize: h.questionService.PageSize()})
		resp.Notices = []NoticeResponse{h.render.Notice(r, types.NoticeInfo, types.MsgLoginRequired)}
		resp.Redirect = pathLogin
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if err != nil {
		h.fail(w, r, err, "list questions")
		return
	}

	resp := h.listResponse(result)
	if len(resp.Items) == 0 {
		resp.Notices = []NoticeResponse{h.render.Notice(r, types.NoticeInfo, types.MsgDraftsEmpty)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QuestionHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	if !ViewerFromContext(r.Context()).Authenticated() {
		writeLoginRequired(w, r, h.render)
		return
	}
	writeJSON(w, http.StatusOK, FormResponse{
		Form: FormDescriptor{
			Action: pathCreate,
			Method: http.MethodPost,
			Fields: []string{formFieldQuestion},
		},
	})
}

// CreateQuestion stores a new unpublished question for the viewer.
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := h.questionService.Create(r.Context(), ViewerFromContext(r.Context()), form.Get(formFieldQuestion))
	if err != nil {
		h.fail(w, r, err, "create question")
		return
	}

	writeRedirect(w, http.StatusCreated, pathMyQuestions, QuestionResponse{
		Envelope: Envelope{Redirect: pathMyQuestions},
		Question: question,
	})
}

// GetQuestion returns a question, its comments and the comment form state.
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseQuestionID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	viewer := ViewerFromContext(r.Context())
	question, err := h.questionService.Get(r.Context(), viewer, id)
	if err != nil {
		h.fail(w, r, err, "fetch question")
		return
	}

	comments, err := h.commentService.ListForQuestion(r.Context(), question.ID)
	if err != nil {
		h.fail(w, r, err, "list comments")
		return
	}
	if comments == nil {
		comments = []types.Comment{}
	}

	resp := QuestionDetailResponse{
		Question:  question,
		Comments:  comments,
		CanManage: services.CanManage(viewer, question),
	}
	if len(comments) == 0 {
		notice := h.render.Notice(r, types.NoticeInfo, types.MsgCommentsEmpty)
		resp.CommentsNotice = &notice
	}
	switch {
	case services.CanComment(viewer, question):
		resp.CommentForm = &FormDescriptor{
			Action: pathDetail(question.ID),
			Method: http.MethodPost,
			Fields: []string{formFieldComment},
		}
	case !viewer.Authenticated():
		prompt := h.render.Notice(r, types.NoticeInfo, types.MsgCommentLoginPrompt)
		resp.LoginPrompt = &prompt
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateComment answers a published question as the viewer.
func (h *QuestionHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseQuestionID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	form, err := readForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.commentService.Add(r.Context(), ViewerFromContext(r.Context()), id, form.Get(formFieldComment))
	if err != nil {
		h.fail(w, r, err, "create comment")
		return
	}

	location := pathDetail(id)
	writeRedirect(w, http.StatusCreated, location, CommentResponse{
		Envelope: Envelope{Redirect: location},
		Comment:  comment,
	})
}

// UpdateForm returns the edit form of a question the viewer may manage.
func (h *QuestionHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	question, ok := h.manageable(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, QuestionFormResponse{
		Question: question,
		Form: FormDescriptor{
			Action: pathUpdate(question.ID),
			Method: http.MethodPost,
			Fields: []string{formFieldQuestion},
			Values: map[string]string{formFieldQuestion: question.Text},
		},
	})
}

// UpdateQuestion replaces the text of a question the viewer may manage.
func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseQuestionID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	form, err := readForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := h.questionService.Update(r.Context(), ViewerFromContext(r.Context()), id, form.Get(formFieldQuestion))
	if err != nil {
		h.fail(w, r, err, "update question")
		return
	}

	location := pathDetail(question.ID)
	writeRedirect(w, http.StatusOK, location, QuestionResponse{
		Envelope: Envelope{Redirect: location},
		Question: question,
	})
}

// DeleteConfirm returns the question the viewer is about to delete.
func (h *QuestionHandler) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	question, ok := h.manageable(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, QuestionFormResponse{
		Question: question,
		Form: FormDescriptor{
			Action: pathDelete(question.ID),
			Method: http.MethodPost,
			Fields: []string{},
		},
	})
}

// DeleteQuestion removes a question the viewer may manage.
func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseQuestionID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	if err := h.questionService.Delete(r.Context(), ViewerFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err, "delete question")
		return
	}

	writeRedirect(w, http.StatusOK, pathQuestionList, Envelope{
		Notices:  []NoticeResponse{h.render.Notice(r, types.NoticeSuccess, types.MsgQuestionDeleted)},
		Redirect: pathQuestionList,
	})
}

func (h *QuestionHandler) manageable(w http.ResponseWriter, r *http.Request) (types.Question, bool) {
	id, ok := parseQuestionID(r)
	if !ok {
		h.notFound(w, r)
		return types.Question{}, false
	}
	question, err := h.questionService.GetForManage(r.Context(), ViewerFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "fetch question")
		return types.Question{}, false
	}
	return question, true
}

func (h *QuestionHandler) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Envelope{
		Notices: []NoticeResponse{h.render.Notice(r, types.NoticeError, types.MsgQuestionNotFound)},
	})
}

// fail maps service errors to responses.
func (h *QuestionHandler) fail(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrAuthRequired):
		writeLoginRequired(w, r, h.render)
	case errors.Is(err, store.ErrNotFound):
		h.notFound(w, r)
	case errors.Is(err, services.ErrPageOutOfRange):
		writeError(w, http.StatusNotFound, "invalid page")
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, Envelope{FieldErrors: h.render.FieldErrors(r, verr)})
	default:
		h.logger.Error(action, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	}
}
