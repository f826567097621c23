package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/qaforum/apiserver/types"
)

func TestExportWritesPublishedQuestions(t *testing.T) {
	questions := newMemQuestions()
	comments := &memComments{}
	objects := &memObjectStore{bucket: "qaforum"}
	ctx := context.Background()

	for i := 0; i < exportBatchSize+3; i++ {
		questions.add(types.Question{AuthorID: intPtr(1), Text: questionText, IsPublished: true})
	}
	first := questions.add(types.Question{AuthorID: intPtr(1), Text: "latest question text", IsPublished: true})
	questions.add(types.Question{AuthorID: intPtr(1), Text: "draft"})
	if _, err := comments.Create(ctx, types.Comment{AuthorID: intPtr(2), QuestionID: intPtr(first.ID), Text: "an answer"}); err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	svc := NewExportService(questions, comments, objects, nil)
	svc.now = func() time.Time { return time.Date(2026, time.May, 4, 10, 30, 0, 0, time.UTC) }

	result, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Key != "exports/questions-20260504T103000Z.json" {
		t.Fatalf("key = %q", result.Key)
	}
	if result.Questions != exportBatchSize+4 || result.Comments != 1 {
		t.Fatalf("counts = %d/%d", result.Questions, result.Comments)
	}
	if !objects.ensured || objects.lastType != "application/json" {
		t.Fatalf("bucket ensured=%v content type=%q", objects.ensured, objects.lastType)
	}

	var archive Archive
	if err := json.Unmarshal(objects.objects[result.Key], &archive); err != nil {
		t.Fatalf("decode archive: %v", err)
	}
	if len(archive.Questions) != result.Questions {
		t.Fatalf("archive questions = %d", len(archive.Questions))
	}
	top := archive.Questions[0]
	if top.ID != first.ID || len(top.Comments) != 1 || top.Comments[0].Text != "an answer" {
		t.Fatalf("unexpected first entry: %+v", top)
	}
	for _, q := range archive.Questions {
		if !q.IsPublished {
			t.Fatalf("draft %d exported", q.ID)
		}
	}
}

func TestExportUploadFailure(t *testing.T) {
	objects := &memObjectStore{bucket: "qaforum", putErr: errors.New("denied")}
	svc := NewExportService(newMemQuestions(), &memComments{}, objects, nil)
	if _, err := svc.Export(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestPruneKeepsNewestArchives(t *testing.T) {
	objects := &memObjectStore{bucket: "qaforum", objects: map[string][]byte{
		"exports/questions-20260101T000000Z.json": []byte("{}"),
		"exports/questions-20260201T000000Z.json": []byte("{}"),
		"exports/questions-20260301T000000Z.json": []byte("{}"),
		"exports/notes.txt":                       []byte("keep me"),
	}}
	svc := NewExportService(newMemQuestions(), &memComments{}, objects, nil)
	ctx := context.Background()

	archives, err := svc.Archives(ctx)
	if err != nil {
		t.Fatalf("archives: %v", err)
	}
	if len(archives) != 3 || archives[0].Key != "exports/questions-20260301T000000Z.json" {
		t.Fatalf("archives = %+v", archives)
	}

	deleted, err := svc.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "exports/questions-20260101T000000Z.json" {
		t.Fatalf("deleted = %v", deleted)
	}
	if _, ok := objects.objects["exports/notes.txt"]; !ok {
		t.Fatal("unrelated object was deleted")
	}

	if _, err := svc.Prune(ctx, 0); err == nil {
		t.Fatal("expected error for keep < 1")
	}
}
