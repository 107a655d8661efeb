package social

import (
	"context"

	"agora/internal/models"
)

// AddComment appends an immutable comment to the post's log. Commenting uses
// the same visibility predicate as reading the post.
func (e *Engine) AddComment(ctx context.Context, caller string, id uint64, content string) (models.Comment, error) {
	if content == "" {
		return models.Comment{}, models.NewValidationError("Content is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.postLocked(id)
	if err != nil {
		return models.Comment{}, err
	}
	if !e.visibleLocked(rec, caller) {
		return models.Comment{}, models.NewCommentForbiddenError(id)
	}

	comment := models.Comment{
		Index:     len(rec.comments),
		Commenter: caller,
		Content:   content,
		CreatedAt: e.now(),
	}
	rec.comments = append(rec.comments, comment)

	e.emit(ctx, models.EventCommentAdded, map[string]interface{}{
		"post_id":   id,
		"commenter": caller,
		"content":   content,
	})
	return comment, nil
}

// GetComments returns the post's full comment log in append order. Reading
// comments is gated by the same visibility predicate as reading the post
// itself, so private posts hide their comments from non-followers.
func (e *Engine) GetComments(_ context.Context, caller string, id uint64) ([]models.Comment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.postLocked(id)
	if err != nil {
		return nil, err
	}
	if !e.visibleLocked(rec, caller) {
		return nil, models.NewPrivateAccessDeniedError(id)
	}

	out := make([]models.Comment, len(rec.comments))
	copy(out, rec.comments)
	return out, nil
}
