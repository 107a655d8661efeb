// Package models contains data structures for the application's domain models.
package models

import "time"

// Profile is a snapshot of an identity's one-time-settable profile record.
// A profile exists iff Username is non-empty.
type Profile struct {
	Identity      string `json:"identity"`
	Username      string `json:"username"`
	Bio           string `json:"bio"`
	FollowerCount int    `json:"follower_count"`
}

// Exists reports whether the snapshot describes a registered profile.
func (p Profile) Exists() bool {
	return p.Username != ""
}

// Post is a snapshot of a post and its aggregate counters.
// Author, Content, Private and CreatedAt are immutable after creation;
// the counters only ever grow.
type Post struct {
	ID           uint64    `json:"id"`
	Author       string    `json:"author"`
	Content      string    `json:"content"`
	Private      bool      `json:"private"`
	CreatedAt    time.Time `json:"created_at"`
	Likes        uint64    `json:"likes"`
	Dislikes     uint64    `json:"dislikes"`
	CommentCount int       `json:"comment_count"`
}

// Comment is an immutable entry in a post's append-only comment log.
// Index is the zero-based append position.
type Comment struct {
	Index     int       `json:"index"`
	Commenter string    `json:"commenter"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
