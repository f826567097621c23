package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/qaforum/apiserver/internal/store"
	"github.com/qaforum/apiserver/types"
)

var (
	alice = types.Viewer{UserID: 1, Username: "alice"}
	bob   = types.Viewer{UserID: 2, Username: "bobby"}
)

const questionText = "What is the best way to learn Go?"

func TestListPublishedPaginates(t *testing.T) {
	repo := newMemQuestions()
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		repo.add(types.Question{AuthorID: intPtr(1), Text: fmt.Sprintf("question %d", i), PubDate: base.Add(time.Duration(i) * time.Hour), IsPublished: true})
	}
	repo.add(types.Question{AuthorID: intPtr(1), Text: "draft", PubDate: base.Add(48 * time.Hour)})

	svc := NewQuestionService(repo, 10, nil, nil)
	ctx := context.Background()

	first, err := svc.ListPublished(ctx, 1)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(first.Items) != 10 || !first.IsPaginated() || !first.HasNext() {
		t.Fatalf("unexpected first page: len=%d paginated=%v next=%v", len(first.Items), first.IsPaginated(), first.HasNext())
	}
	if first.Items[0].Text != "question 14" {
		t.Fatalf("first item = %q, want newest", first.Items[0].Text)
	}

	second, err := svc.ListPublished(ctx, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(second.Items) != 5 || second.HasNext() || !second.HasPrevious() {
		t.Fatalf("unexpected second page: len=%d", len(second.Items))
	}

	if _, err := svc.ListPublished(ctx, 3); !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("page 3 err = %v, want ErrPageOutOfRange", err)
	}
}

func TestListPublishedEmptyFirstPage(t *testing.T) {
	svc := NewQuestionService(newMemQuestions(), 0, nil, nil)
	page, err := svc.ListPublished(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 0 || page.PageSize != DefaultPageSize {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestListDrafts(t *testing.T) {
	repo := newMemQuestions()
	mine := repo.add(types.Question{AuthorID: intPtr(alice.UserID), Text: "alice draft"})
	repo.add(types.Question{AuthorID: intPtr(alice.UserID), Text: "alice published", IsPublished: true})
	repo.add(types.Question{AuthorID: intPtr(bob.UserID), Text: "bob draft"})
	svc := NewQuestionService(repo, 5, nil, nil)
	ctx := context.Background()

	page, err := svc.ListDrafts(ctx, alice, 1)
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != mine.ID {
		t.Fatalf("drafts = %+v, want only alice draft", page.Items)
	}

	if _, err := svc.ListDrafts(ctx, types.Anonymous, 1); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("anonymous err = %v, want ErrAuthRequired", err)
	}
}

func TestGetAppliesVisibility(t *testing.T) {
	repo := newMemQuestions()
	draft := repo.add(types.Question{AuthorID: intPtr(alice.UserID), Text: "draft"})
	svc := NewQuestionService(repo, 5, nil, nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, alice, draft.ID); err != nil {
		t.Fatalf("author get: %v", err)
	}
	for _, viewer := range []types.Viewer{bob, types.Anonymous} {
		if _, err := svc.Get(ctx, viewer, draft.ID); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("viewer %d err = %v, want ErrNotFound", viewer.UserID, err)
		}
	}
	if _, err := svc.Get(ctx, alice, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing err = %v, want ErrNotFound", err)
	}
}

func TestCreateQuestion(t *testing.T) {
	repo := newMemQuestions()
	pub := &recordingPublisher{}
	svc := NewQuestionService(repo, 5, pub, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, types.Anonymous, questionText); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("anonymous err = %v, want ErrAuthRequired", err)
	}

	_, err := svc.Create(ctx, alice, "too short")
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("question_text") {
		t.Fatalf("short text err = %v, want question_text error", err)
	}

	q, err := svc.Create(ctx, alice, "  "+questionText+"  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Text != questionText || q.IsPublished || !q.IsAuthoredBy(alice.UserID) {
		t.Fatalf("unexpected question: %+v", q)
	}
	if q.AuthorUsername != alice.Username {
		t.Fatalf("author username = %q", q.AuthorUsername)
	}
	if got := pub.eventTypes(); len(got) != 1 || got[0] != types.EventQuestionCreated {
		t.Fatalf("events = %v", got)
	}
}

func TestUpdateAndDeleteRequireManageRights(t *testing.T) {
	repo := newMemQuestions()
	pub := &recordingPublisher{}
	svc := NewQuestionService(repo, 5, pub, nil)
	ctx := context.Background()

	draft := repo.add(types.Question{AuthorID: intPtr(alice.UserID), Text: questionText})
	published := repo.add(types.Question{AuthorID: intPtr(alice.UserID), Text: questionText, IsPublished: true})

	if _, err := svc.Update(ctx, types.Anonymous, draft.ID, questionText); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("anonymous update err = %v", err)
	}
	if _, err := svc.Update(ctx, bob, draft.ID, questionText); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("other user update err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, alice, published.ID, questionText); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("published update err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, alice, published.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("published delete err = %v, want ErrNotFound", err)
	}

	updated, err := svc.Update(ctx, alice, draft.ID, "An edited question about Go")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != "An edited question about Go" || updated.IsPublished {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := svc.Update(ctx, alice, draft.ID, strings.Repeat("x", 151)); err == nil {
		t.Fatal("expected validation error for long text")
	}

	if err := svc.Delete(ctx, bob, draft.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("other user delete err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, alice, draft.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, draft.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("deleted question still stored: %v", err)
	}

	want := []types.EventType{types.EventQuestionUpdated, types.EventQuestionDeleted}
	got := pub.eventTypes()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestSetPublished(t *testing.T) {
	repo := newMemQuestions()
	pub := &recordingPublisher{}
	svc := NewQuestionService(repo, 5, pub, nil)
	ctx := context.Background()

	q := repo.add(types.Question{AuthorID: intPtr(alice.UserID), Text: questionText})

	updated, err := svc.SetPublished(ctx, []int{q.ID, 42}, true)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(updated) != 1 || updated[0] != q.ID {
		t.Fatalf("updated = %v, want [%d]", updated, q.ID)
	}
	if _, err := svc.Get(ctx, types.Anonymous, q.ID); err != nil {
		t.Fatalf("published question not visible: %v", err)
	}

	if _, err := svc.SetPublished(ctx, []int{q.ID}, false); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	got := pub.eventTypes()
	if len(got) != 2 || got[0] != types.EventQuestionPublished || got[1] != types.EventQuestionUnpublished {
		t.Fatalf("events = %v", got)
	}
}
