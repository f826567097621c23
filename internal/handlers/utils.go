package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/qaforum/apiserver/internal/i18n"
	"github.com/qaforum/apiserver/internal/services"
	"github.com/qaforum/apiserver/types"
	"golang.org/x/text/message"
)

const (
	defaultPage  = 1
	maxBodyBytes = 1 << 20
)

// Paths that responses redirect to.
const (
	pathQuestionList = "/"
	pathMyQuestions  = "/question/mine/"
	pathLogin        = "/authors/login/"
	pathLoginCreate  = "/authors/login/create/"
	pathRegister     = "/authors/register/"
	pathCreate       = "/question/create/"
)

func pathDetail(id int) string {
	return fmt.Sprintf("/question/%d/detail/", id)
}

func pathUpdate(id int) string {
	return fmt.Sprintf("/question/%d/update/", id)
}

func pathDelete(id int) string {
	return fmt.Sprintf("/question/%d/delete/", id)
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NoticeResponse is a rendered notice.
type NoticeResponse struct {
	Level types.NoticeLevel `json:"level"`
	Key   string            `json:"key"`
	Text  string            `json:"text"`
}

// Envelope carries the parts any response may include next to its payload.
type Envelope struct {
	Notices     []NoticeResponse    `json:"notices,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
	Redirect    string              `json:"redirect,omitempty"`
}

// FormDescriptor describes a form a client can submit.
type FormDescriptor struct {
	Action string            `json:"action"`
	Method string            `json:"method"`
	Fields []string          `json:"fields"`
	Values map[string]string `json:"values,omitempty"`
}

// Renderer turns catalog messages into text for the request's language.
type Renderer struct {
	bundle *i18n.Bundle
}

func NewRenderer(bundle *i18n.Bundle) *Renderer {
	return &Renderer{bundle: bundle}
}

func (rd *Renderer) printer(r *http.Request) *message.Printer {
	return rd.bundle.Printer(rd.bundle.ResolveTag(r))
}

// Notice renders a single notice.
func (rd *Renderer) Notice(r *http.Request, level types.NoticeLevel, key string, args ...any) NoticeResponse {
	msg := types.NewMessage(key, args...)
	return NoticeResponse{
		Level: level,
		Key:   key,
		Text:  i18n.Render(rd.printer(r), msg),
	}
}

// FieldErrors renders every message of verr.
func (rd *Renderer) FieldErrors(r *http.Request, verr *services.ValidationError) map[string][]string {
	p := rd.printer(r)
	out := make(map[string][]string, len(verr.Fields))
	for field, msgs := range verr.Fields {
		out[field] = i18n.RenderAll(p, msgs)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeRedirect writes value and points the client at location.
func writeRedirect(w http.ResponseWriter, status int, location string, value any) {
	w.Header().Set("Location", location)
	writeJSON(w, status, value)
}

// readForm reads a JSON object of strings or a urlencoded form body.
func readForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		fields := map[string]string{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return nil, errors.New("invalid request")
		}
		values := url.Values{}
		for key, value := range fields {
			values.Set(key, value)
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, errors.New("invalid request")
	}
	return r.PostForm, nil
}

func parsePage(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return defaultPage, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errors.New("invalid page")
	}
	return page, nil
}

// parseQuestionID reads the id path parameter. Malformed ids are reported
// as missing questions.
func parseQuestionID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "questionID"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
