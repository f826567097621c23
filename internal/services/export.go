package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/qaforum/apiserver/internal/storage"
	"github.com/qaforum/apiserver/types"
)

const (
	exportBatchSize = 100
	exportPrefix    = "exports/questions-"
)

// ObjectStore is the subset of object storage the export needs.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// ExportedQuestion is a published question with its comments.
type ExportedQuestion struct {
	types.Question
	Comments []types.Comment `json:"comments"`
}

// Archive is the document written by an export.
type Archive struct {
	ExportedAt time.Time          `json:"exported_at"`
	Questions  []ExportedQuestion `json:"questions"`
}

// ExportResult describes a written archive.
type ExportResult struct {
	Bucket    string
	Key       string
	Questions int
	Comments  int
	Size      int64
}

// ExportService snapshots published questions into object storage.
type ExportService struct {
	questions QuestionRepository
	comments  CommentRepository
	store     ObjectStore
	logger    *slog.Logger
	now       func() time.Time
}

func NewExportService(questions QuestionRepository, comments CommentRepository, store ObjectStore, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		questions: questions,
		comments:  comments,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// ExportKey returns the object key of an archive taken at t.
func ExportKey(t time.Time) string {
	return fmt.Sprintf("%s%s.json", exportPrefix, t.UTC().Format("20060102T150405Z"))
}

// Export writes every published question and its comments as one JSON
// document.
func (s *ExportService) Export(ctx context.Context) (ExportResult, error) {
	exportedAt := s.now().UTC()
	archive := Archive{ExportedAt: exportedAt, Questions: []ExportedQuestion{}}
	commentCount := 0

	for offset := 0; ; offset += exportBatchSize {
		batch, total, err := s.questions.ListPublished(ctx, offset, exportBatchSize)
		if err != nil {
			return ExportResult{}, fmt.Errorf("list published questions: %w", err)
		}
		for _, question := range batch {
			comments, err := s.comments.ListByQuestion(ctx, question.ID)
			if err != nil {
				return ExportResult{}, fmt.Errorf("list comments of question %d: %w", question.ID, err)
			}
			if comments == nil {
				comments = []types.Comment{}
			}
			commentCount += len(comments)
			archive.Questions = append(archive.Questions, ExportedQuestion{Question: question, Comments: comments})
		}
		if len(batch) == 0 || offset+len(batch) >= total {
			break
		}
	}

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return ExportResult{}, fmt.Errorf("encode archive: %w", err)
	}

	if err := s.store.EnsureBucket(ctx); err != nil {
		return ExportResult{}, fmt.Errorf("ensure bucket: %w", err)
	}
	key := ExportKey(exportedAt)
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return ExportResult{}, fmt.Errorf("upload archive: %w", err)
	}

	result := ExportResult{
		Bucket:    s.store.Bucket(),
		Key:       key,
		Questions: len(archive.Questions),
		Comments:  commentCount,
		Size:      int64(len(data)),
	}
	s.logger.Info("archive exported",
		"bucket", result.Bucket,
		"key", result.Key,
		"questions", result.Questions,
		"comments", result.Comments,
	)
	return result, nil
}

// Archives lists stored archives, newest first.
func (s *ExportService) Archives(ctx context.Context) ([]storage.ObjectInfo, error) {
	objects, err := s.store.List(ctx, exportPrefix)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	archives := objects[:0]
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, ".json") {
			archives = append(archives, obj)
		}
	}
	// Keys embed a sortable UTC timestamp.
	sort.Slice(archives, func(i, j int) bool { return archives[i].Key > archives[j].Key })
	return archives, nil
}

// Prune deletes all but the newest keep archives and returns the deleted keys.
func (s *ExportService) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 1 {
		return nil, fmt.Errorf("keep must be at least 1, got %d", keep)
	}
	archives, err := s.Archives(ctx)
	if err != nil {
		return nil, err
	}
	if len(archives) <= keep {
		return nil, nil
	}

	var deleted []string
	for _, obj := range archives[keep:] {
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			return deleted, fmt.Errorf("delete archive %s: %w", obj.Key, err)
		}
		deleted = append(deleted, obj.Key)
	}
	s.logger.Info("archives pruned", "bucket", s.store.Bucket(), "deleted", len(deleted), "kept", keep)
	return deleted, nil
}
