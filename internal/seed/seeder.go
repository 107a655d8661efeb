// Package seed populates a backend with demo data: random social meshes via
// gofakeit and deterministic YAML scenarios.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Backend is the surface the seeder drives. *social.Engine satisfies it
// directly; cmd/seed wires an HTTP client against a running server.
type Backend interface {
	CreateProfile(ctx context.Context, caller, username, bio string) (models.Profile, error)
	Follow(ctx context.Context, caller, target string) error
	CreatePost(ctx context.Context, caller, content string, private bool) (models.Post, error)
	React(ctx context.Context, caller string, id uint64, liked bool) (models.Post, error)
	AddComment(ctx context.Context, caller string, id uint64, content string) (models.Comment, error)
}

// Seeder generates demo profiles, posts, follows, reactions and comments.
type Seeder struct {
	backend Backend
	rng     *rand.Rand
}

// NewSeeder creates a Seeder. A non-zero seedValue makes the generated mesh
// reproducible.
func NewSeeder(backend Backend, seedValue int64) *Seeder {
	if seedValue != 0 {
		gofakeit.Seed(seedValue)
	}
	return &Seeder{
		backend: backend,
		rng:     rand.New(rand.NewSource(seedValue)),
	}
}

// SeedMesh creates numProfiles profiles, a random follow graph, numPosts
// posts (roughly a quarter private) and a spread of reactions and comments.
// Returns the created identities.
func (s *Seeder) SeedMesh(ctx context.Context, numProfiles, numPosts int) ([]string, error) {
	identities := make([]string, 0, numProfiles)
	for i := 0; i < numProfiles; i++ {
		identity := fmt.Sprintf("addr-%s", gofakeit.LetterN(12))
		username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
		if _, err := s.backend.CreateProfile(ctx, identity, username, gofakeit.Sentence(10)); err != nil {
			return nil, fmt.Errorf("seed profile %s: %w", identity, err)
		}
		identities = append(identities, identity)
	}

	// Each identity follows a handful of random others. Self-follows and
	// duplicates simply get skipped.
	for _, follower := range identities {
		for n := 2 + s.rng.Intn(5); n > 0; n-- {
			target := identities[s.rng.Intn(len(identities))]
			if err := s.backend.Follow(ctx, follower, target); err != nil && !isConflict(err) {
				return nil, fmt.Errorf("seed follow %s -> %s: %w", follower, target, err)
			}
		}
	}

	postIDs := make([]uint64, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := identities[s.rng.Intn(len(identities))]
		private := s.rng.Intn(4) == 0
		post, err := s.backend.CreatePost(ctx, author, gofakeit.Paragraph(1, 3, 5, "\n"), private)
		if err != nil {
			return nil, fmt.Errorf("seed post by %s: %w", author, err)
		}
		postIDs = append(postIDs, post.ID)
	}

	for _, id := range postIDs {
		for n := s.rng.Intn(6); n > 0; n-- {
			reactor := identities[s.rng.Intn(len(identities))]
			liked := s.rng.Intn(5) != 0
			if _, err := s.backend.React(ctx, reactor, id, liked); err != nil {
				// Private posts reject strangers; repeat reactors collide.
				if isConflict(err) || isForbidden(err) {
					continue
				}
				return nil, fmt.Errorf("seed reaction on post %d: %w", id, err)
			}
		}
		for n := s.rng.Intn(4); n > 0; n-- {
			commenter := identities[s.rng.Intn(len(identities))]
			if _, err := s.backend.AddComment(ctx, commenter, id, gofakeit.Sentence(8)); err != nil {
				if isForbidden(err) {
					continue
				}
				return nil, fmt.Errorf("seed comment on post %d: %w", id, err)
			}
		}
	}

	log.Printf("Seeded %d profiles and %d posts", len(identities), len(postIDs))
	return identities, nil
}

func isConflict(err error) bool {
	switch models.CodeOf(err) {
	case models.CodeAlreadyExists, models.CodeAlreadyFollowing,
		models.CodeSelfFollow, models.CodeAlreadyReacted:
		return true
	}
	return false
}

func isForbidden(err error) bool {
	switch models.CodeOf(err) {
	case models.CodePrivateAccessDenied, models.CodeCommentForbidden:
		return true
	}
	return false
}
