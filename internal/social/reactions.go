package social

import (
	"context"

	"agora/internal/models"
)

// React records the caller's like or dislike on a post. An identity reacts
// at most once per post; reactions are not switchable or retractable. A like
// credits the post's author through the reward sink before any state is
// mutated, so a failed credit aborts the whole reaction and the invariant
// likes+dislikes == |reactedBy| never tears.
func (e *Engine) React(ctx context.Context, caller string, id uint64, liked bool) (models.Post, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.postLocked(id)
	if err != nil {
		return models.Post{}, err
	}
	if _, reacted := rec.reactedBy[caller]; reacted {
		return models.Post{}, models.NewAlreadyReactedError(id)
	}

	if liked {
		if err := e.rewards.Credit(ctx, rec.author, e.likeReward); err != nil {
			return models.Post{}, models.NewInternalError(err)
		}
	}

	rec.reactedBy[caller] = struct{}{}
	if liked {
		rec.likes++
	} else {
		rec.dislikes++
	}

	e.emit(ctx, models.EventReactionAdded, map[string]interface{}{
		"post_id": id,
		"reactor": caller,
		"liked":   liked,
		"author":  rec.author,
	})
	return snapshotPost(id, rec), nil
}
