package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/qaforum/apiserver/internal/db/dbtest"
	"github.com/qaforum/apiserver/types"
)

func createUser(t *testing.T, repo *UserRepository, username string) types.User {
	t.Helper()
	user, err := repo.Create(context.Background(), types.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createQuestion(t *testing.T, repo *QuestionRepository, authorID int, text string, published bool, pubDate time.Time) types.Question {
	t.Helper()
	question, err := repo.Create(context.Background(), types.Question{
		AuthorID:    &authorID,
		Text:        text,
		PubDate:     pubDate,
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return question
}

func TestUserCreateAndLookup(t *testing.T) {
	conn := dbtest.Open(t)
	users := NewUserRepository(conn)
	ctx := context.Background()

	created := createUser(t, users, "username")
	if created.ID == 0 {
		t.Fatal("expected user id to be set")
	}

	byName, err := users.GetByUsername(ctx, "username")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID || byName.Email != "username@example.com" {
		t.Fatalf("unexpected user: %+v", byName)
	}

	byEmail, err := users.GetByEmail(ctx, "username@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("email lookup id = %d, want %d", byEmail.ID, created.ID)
	}

	if _, err := users.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}
}

func TestUserCreateConflicts(t *testing.T) {
	conn := dbtest.Open(t)
	users := NewUserRepository(conn)
	ctx := context.Background()

	createUser(t, users, "username")

	tests := []struct {
		name  string
		user  types.User
		field string
	}{
		{
			name:  "duplicate username",
			user:  types.User{Username: "username", Email: "other@example.com", PasswordHash: "x"},
			field: "username",
		},
		{
			name:  "duplicate email",
			user:  types.User{Username: "another", Email: "username@example.com", PasswordHash: "x"},
			field: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Create(ctx, tt.user)
			if !errors.Is(err, ErrConflict) {
				t.Fatalf("err = %v, want ErrConflict", err)
			}
			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("expected *ConflictError, got %T", err)
			}
			if conflict.Field != tt.field {
				t.Fatalf("conflict field = %q, want %q", conflict.Field, tt.field)
			}
		})
	}
}

func TestListPublishedOnlyReturnsPublishedNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	users := NewUserRepository(conn)
	questions := NewQuestionRepository(conn)
	ctx := context.Background()

	author := createUser(t, users, "username")
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		createQuestion(t, questions, author.ID, fmt.Sprintf("Question number %d", i), true, base.Add(time.Duration(i)*time.Minute))
	}
	createQuestion(t, questions, author.ID, "Draft question text", false, base.Add(time.Hour))

	first, total, err := questions.ListPublished(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if total != 15 {
		t.Fatalf("total = %d, want 15", total)
	}
	if len(first) != 10 {
		t.Fatalf("first page len = %d, want 10", len(first))
	}
	if first[0].Text != "Question number 14" {
		t.Fatalf("first item = %q, want newest", first[0].Text)
	}
	if first[0].AuthorUsername != "username" {
		t.Fatalf("author username = %q", first[0].AuthorUsername)
	}
	for _, q := range first {
		if !q.IsPublished {
			t.Fatalf("unpublished question %d in public list", q.ID)
		}
	}

	second, _, err := questions.ListPublished(ctx, 10, 10)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second) != 5 {
		t.Fatalf("second page len = %d, want 5", len(second))
	}
	if second[4].Text != "Question number 0" {
		t.Fatalf("last item = %q, want oldest", second[4].Text)
	}
}

func TestListByAuthorScopesToAuthorAndState(t *testing.T) {
	conn := dbtest.Open(t)
	users := NewUserRepository(conn)
	questions := NewQuestionRepository(conn)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bobby")
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	draft := createQuestion(t, questions, alice.ID, "Alice draft question", false, now)
	createQuestion(t, questions, alice.ID, "Alice published question", true, now)
	createQuestion(t, questions, bob.ID, "Bob draft question here", false, now)

	items, total, err := questions.ListByAuthor(ctx, alice.ID, false, 0, 5)
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("total = %d len = %d, want 1", total, len(items))
	}
	if items[0].ID != draft.ID {
		t.Fatalf("item id = %d, want %d", items[0].ID, draft.ID)
	}
}

func TestQuestionUpdateDeleteAndPublish(t *testing.T) {
	conn := dbtest.Open(t)
	users := NewUserRepository(conn)
	questions := NewQuestionRepository(conn)
	comments := NewCommentRepository(conn)
	ctx := context.Background()

	author := createUser(t, users, "username")
	q := createQuestion(t, questions, author.ID, "Original question text", false, time.Time{})

	if err := questions.UpdateText(ctx, q.ID, "Updated question text"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := questions.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != "Updated question text" || got.IsPublished {
		t.Fatalf("unexpected question after update: %+v", got)
	}
	if !got.IsAuthoredBy(author.ID) {
		t.Fatal("expected author to be preserved")
	}

	updated, err := questions.SetPublished(ctx, []int{q.ID, 9999}, true)
	if err != nil {
		t.Fatalf("set published: %v", err)
	}
	if len(updated) != 1 || updated[0] != q.ID {
		t.Fatalf("updated ids = %v, want [%d]", updated, q.ID)
	}
	got, err = questions.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("get after publish: %v", err)
	}
	if !got.IsPublished {
		t.Fatal("expected question to be published")
	}

	comment, err := comments.Create(ctx, types.Comment{
		AuthorID:   &author.ID,
		QuestionID: &q.ID,
		Text:       "commenttext",
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := questions.Delete(ctx, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := questions.Get(ctx, q.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted err = %v, want ErrNotFound", err)
	}
	if err := questions.Delete(ctx, q.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete twice err = %v, want ErrNotFound", err)
	}
	if err := questions.UpdateText(ctx, q.ID, "whatever text here"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update deleted err = %v, want ErrNotFound", err)
	}

	// The comment survives with its question reference cleared.
	var questionID sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT question_id FROM comments WHERE id = $1`, comment.ID).Scan(&questionID); err != nil {
		t.Fatalf("load orphaned comment: %v", err)
	}
	if questionID.Valid {
		t.Fatalf("question_id = %d, want NULL", questionID.Int64)
	}
}

func TestDeletingAuthorKeepsQuestionsAndComments(t *testing.T) {
	conn := dbtest.Open(t)
	users := NewUserRepository(conn)
	questions := NewQuestionRepository(conn)
	comments := NewCommentRepository(conn)
	ctx := context.Background()

	author := createUser(t, users, "username")
	q := createQuestion(t, questions, author.ID, "A question that outlives", true, time.Time{})
	if _, err := comments.Create(ctx, types.Comment{AuthorID: &author.ID, QuestionID: &q.ID, Text: "still here"}); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if _, err := conn.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, author.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	got, err := questions.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if got.AuthorID != nil || got.AuthorUsername != "" {
		t.Fatalf("expected author cleared, got %+v", got)
	}

	list, err := comments.ListByQuestion(ctx, q.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(list) != 1 || list[0].AuthorID != nil {
		t.Fatalf("unexpected comments: %+v", list)
	}
}

func TestCommentsNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	users := NewUserRepository(conn)
	questions := NewQuestionRepository(conn)
	comments := NewCommentRepository(conn)
	ctx := context.Background()

	author := createUser(t, users, "username")
	q := createQuestion(t, questions, author.ID, "Question with answers", true, time.Time{})
	for _, text := range []string{"first answer", "second answer"} {
		if _, err := comments.Create(ctx, types.Comment{AuthorID: &author.ID, QuestionID: &q.ID, Text: text}); err != nil {
			t.Fatalf("create comment: %v", err)
		}
	}

	list, err := comments.ListByQuestion(ctx, q.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Text != "second answer" {
		t.Fatalf("first comment = %q, want newest", list[0].Text)
	}
	if list[0].AuthorUsername != "username" {
		t.Fatalf("author = %q", list[0].AuthorUsername)
	}
	if list[0].PubDate.IsZero() {
		t.Fatal("expected pub date to be set")
	}
}
