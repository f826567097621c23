package services

import "github.com/qaforum/apiserver/types"

// CanView reports whether viewer may see q. Published questions are public;
// unpublished ones are visible to their author only.
func CanView(viewer types.Viewer, q types.Question) bool {
	return q.IsPublished || (viewer.Authenticated() && q.IsAuthoredBy(viewer.UserID))
}

// CanManage reports whether viewer may edit or delete q. Publication
// freezes a question, so only unpublished questions can be managed.
func CanManage(viewer types.Viewer, q types.Question) bool {
	return viewer.Authenticated() && q.IsAuthoredBy(viewer.UserID) && !q.IsPublished
}

// CanComment reports whether viewer may answer q.
func CanComment(viewer types.Viewer, q types.Question) bool {
	return viewer.Authenticated() && q.IsPublished
}
