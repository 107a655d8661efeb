// Package social implements the state-management and access-control engine:
// identity profiles, the directed follow graph, posts with a privacy rule,
// per-post reactions, and threaded comments.
//
// All state lives in a single Engine guarded by one exclusive mutex. Every
// public operation runs start-to-finish under that mutex, so operations are
// linearizable and never observe partially-applied effects. A failed
// operation leaves all state exactly as it was.
package social

import (
	"context"
	"sync"
	"time"

	"agora/internal/models"
	"agora/internal/reward"
)

// EventSink receives the single notification emitted by each successful
// mutation. Publishing happens inside the operation's critical section, so
// sinks observe events in the same total order as the mutations themselves.
type EventSink interface {
	Publish(ctx context.Context, ev models.Event)
}

// Options configures a new Engine.
type Options struct {
	// Rewards is credited on every like. Required.
	Rewards reward.Sink
	// Events receives one event per successful mutation. Optional.
	Events EventSink
	// LikeReward is the amount credited per like. Defaults to
	// reward.DefaultLikeReward when zero.
	LikeReward int64
	// Now supplies timestamps; defaults to time.Now.
	Now func() time.Time
}

type profileRecord struct {
	username string
	bio      string
}

// followerSet keeps the display sequence alongside an O(1) membership index.
// idx maps follower identity to its position in seq.
type followerSet struct {
	seq []string
	idx map[string]int
}

type postRecord struct {
	author    string
	content   string
	private   bool
	createdAt time.Time
	likes     uint64
	dislikes  uint64
	reactedBy map[string]struct{}
	comments  []models.Comment
}

// Engine owns all social state behind a single exclusive lock.
type Engine struct {
	mu         sync.Mutex
	profiles   map[string]profileRecord
	followers  map[string]*followerSet
	posts      []*postRecord // posts[i] has id i+1; id 0 means "does not exist"
	rewards    reward.Sink
	events     EventSink
	likeReward int64
	now        func() time.Time
}

// NewEngine returns an empty engine. Post ids restart at 1 for every engine;
// they are never reused within an engine's lifetime.
func NewEngine(opts Options) *Engine {
	likeReward := opts.LikeReward
	if likeReward == 0 {
		likeReward = reward.DefaultLikeReward
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		profiles:   make(map[string]profileRecord),
		followers:  make(map[string]*followerSet),
		rewards:    opts.Rewards,
		events:     opts.Events,
		likeReward: likeReward,
		now:        now,
	}
}

// LikeReward returns the configured per-like credit amount.
func (e *Engine) LikeReward() int64 {
	return e.likeReward
}

func (e *Engine) emit(ctx context.Context, typ models.EventType, payload map[string]interface{}) {
	if e.events == nil {
		return
	}
	e.events.Publish(ctx, models.NewEvent(typ, e.now(), payload))
}

// CreateProfile registers the caller's one-time username/bio record.
// Creation is first-write-wins: a second attempt fails without mutating
// state. Usernames are not unique across identities.
func (e *Engine) CreateProfile(ctx context.Context, caller, username, bio string) (models.Profile, error) {
	if username == "" {
		return models.Profile{}, models.NewValidationError("Username is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.profiles[caller]; ok {
		return models.Profile{}, models.NewAlreadyExistsError(caller)
	}
	e.profiles[caller] = profileRecord{username: username, bio: bio}

	e.emit(ctx, models.EventProfileCreated, map[string]interface{}{
		"identity": caller,
		"username": username,
		"bio":      bio,
	})
	return e.profileSnapshot(caller), nil
}

// GetProfile returns the identity's profile snapshot. A missing profile is
// not an error; the snapshot's Username is empty and Exists() is false.
func (e *Engine) GetProfile(_ context.Context, identity string) models.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profileSnapshot(identity)
}

// profileSnapshot must be called with e.mu held.
func (e *Engine) profileSnapshot(identity string) models.Profile {
	snap := models.Profile{Identity: identity}
	if rec, ok := e.profiles[identity]; ok {
		snap.Username = rec.username
		snap.Bio = rec.bio
	}
	if fs, ok := e.followers[identity]; ok {
		snap.FollowerCount = len(fs.seq)
	}
	return snap
}
