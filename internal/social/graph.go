package social

import (
	"context"

	"agora/internal/models"
)

// Follow inserts a directed edge caller -> target. Neither identity needs a
// profile. Fails with SelfFollow for caller == target and AlreadyFollowing
// when the edge already exists.
func (e *Engine) Follow(ctx context.Context, caller, target string) error {
	if caller == target {
		return models.NewSelfFollowError()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fs, ok := e.followers[target]
	if !ok {
		fs = &followerSet{idx: make(map[string]int)}
		e.followers[target] = fs
	}
	if _, exists := fs.idx[caller]; exists {
		return models.NewAlreadyFollowingError(target)
	}
	fs.idx[caller] = len(fs.seq)
	fs.seq = append(fs.seq, caller)

	e.emit(ctx, models.EventFollowed, map[string]interface{}{
		"follower": caller,
		"target":   target,
	})
	return nil
}

// Unfollow removes the edge caller -> target, failing with NotFollowing when
// it does not exist. Removal swaps the entry with the last element of the
// follower sequence and shrinks it, so follower enumeration order is not
// stable across removals and must not be relied upon.
func (e *Engine) Unfollow(ctx context.Context, caller, target string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fs, ok := e.followers[target]
	if !ok {
		return models.NewNotFollowingError(target)
	}
	pos, exists := fs.idx[caller]
	if !exists {
		return models.NewNotFollowingError(target)
	}

	last := len(fs.seq) - 1
	moved := fs.seq[last]
	fs.seq[pos] = moved
	fs.seq = fs.seq[:last]
	fs.idx[moved] = pos
	delete(fs.idx, caller)

	e.emit(ctx, models.EventUnfollowed, map[string]interface{}{
		"follower": caller,
		"target":   target,
	})
	return nil
}

// IsFollowing reports whether follower currently follows target.
func (e *Engine) IsFollowing(_ context.Context, target, follower string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isFollowingLocked(target, follower)
}

// isFollowingLocked must be called with e.mu held.
func (e *Engine) isFollowingLocked(target, follower string) bool {
	fs, ok := e.followers[target]
	if !ok {
		return false
	}
	_, exists := fs.idx[follower]
	return exists
}

// ListFollowers returns a copy of target's current follower sequence.
// Order is unspecified and unstable across unfollows.
func (e *Engine) ListFollowers(_ context.Context, target string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	fs, ok := e.followers[target]
	if !ok {
		return []string{}
	}
	out := make([]string, len(fs.seq))
	copy(out, fs.seq)
	return out
}
