package social

import (
	"context"

	"agora/internal/models"
)

// CreatePost stores a new post for the caller, who must have a profile.
// Ids are allocated sequentially starting at 1 and never reused.
func (e *Engine) CreatePost(ctx context.Context, caller, content string, private bool) (models.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.profiles[caller]; !ok {
		return models.Post{}, models.NewProfileRequiredError(caller)
	}

	rec := &postRecord{
		author:    caller,
		content:   content,
		private:   private,
		createdAt: e.now(),
		reactedBy: make(map[string]struct{}),
	}
	e.posts = append(e.posts, rec)
	id := uint64(len(e.posts))

	e.emit(ctx, models.EventPostCreated, map[string]interface{}{
		"post_id": id,
		"author":  caller,
		"content": content,
		"private": private,
	})
	return snapshotPost(id, rec), nil
}

// GetPost returns the post snapshot if the caller may view it. Private posts
// are visible only to the author and the author's current followers; the
// predicate is evaluated fresh on every access, so follow changes take
// effect immediately.
func (e *Engine) GetPost(_ context.Context, caller string, id uint64) (models.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.postLocked(id)
	if err != nil {
		return models.Post{}, err
	}
	if !e.visibleLocked(rec, caller) {
		return models.Post{}, models.NewPrivateAccessDeniedError(id)
	}
	return snapshotPost(id, rec), nil
}

// postLocked must be called with e.mu held.
func (e *Engine) postLocked(id uint64) (*postRecord, error) {
	if id == 0 || id > uint64(len(e.posts)) {
		return nil, models.NewNotFoundError("Post", id)
	}
	return e.posts[id-1], nil
}

// visibleLocked is the single visibility predicate shared by post reads,
// comment reads and comment writes. Must be called with e.mu held.
func (e *Engine) visibleLocked(rec *postRecord, viewer string) bool {
	if !rec.private || viewer == rec.author {
		return true
	}
	return e.isFollowingLocked(rec.author, viewer)
}

func snapshotPost(id uint64, rec *postRecord) models.Post {
	return models.Post{
		ID:           id,
		Author:       rec.author,
		Content:      rec.content,
		Private:      rec.private,
		CreatedAt:    rec.createdAt,
		Likes:        rec.likes,
		Dislikes:     rec.dislikes,
		CommentCount: len(rec.comments),
	}
}
