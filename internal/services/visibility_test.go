package services

import (
	"testing"

	"github.com/qaforum/apiserver/types"
)

func TestCapabilities(t *testing.T) {
	author := types.Viewer{UserID: 1, Username: "author"}
	other := types.Viewer{UserID: 2, Username: "other"}
	anon := types.Anonymous

	draft := types.Question{ID: 1, AuthorID: intPtr(1), IsPublished: false}
	published := types.Question{ID: 2, AuthorID: intPtr(1), IsPublished: true}
	orphan := types.Question{ID: 3, IsPublished: false}

	tests := []struct {
		name                     string
		viewer                   types.Viewer
		question                 types.Question
		view, manage, canComment bool
	}{
		{"author draft", author, draft, true, true, false},
		{"author published", author, published, true, false, true},
		{"other draft", other, draft, false, false, false},
		{"other published", other, published, true, false, true},
		{"anonymous draft", anon, draft, false, false, false},
		{"anonymous published", anon, published, true, false, false},
		{"orphaned draft", author, orphan, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanView(tt.viewer, tt.question); got != tt.view {
				t.Fatalf("CanView = %v, want %v", got, tt.view)
			}
			if got := CanManage(tt.viewer, tt.question); got != tt.manage {
				t.Fatalf("CanManage = %v, want %v", got, tt.manage)
			}
			if got := CanComment(tt.viewer, tt.question); got != tt.canComment {
				t.Fatalf("CanComment = %v, want %v", got, tt.canComment)
			}
		})
	}
}
