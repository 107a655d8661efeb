package seed

import (
	"context"
	"testing"

	"agora/internal/reward"
	"agora/internal/social"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *social.Engine {
	return social.NewEngine(social.Options{Rewards: reward.NewMemorySink()})
}

func TestSeedMesh(t *testing.T) {
	engine := newTestEngine()
	seeder := NewSeeder(engine, 42)
	ctx := context.Background()

	identities, err := seeder.SeedMesh(ctx, 10, 30)
	require.NoError(t, err)
	require.Len(t, identities, 10)

	for _, identity := range identities {
		profile := engine.GetProfile(ctx, identity)
		assert.True(t, profile.Exists(), identity)
	}

	// Thirty posts were created, so ids 1..30 exist and 31 does not.
	_, err = engine.GetPost(ctx, identities[0], 31)
	assert.Error(t, err)
}

func TestApplyScenario(t *testing.T) {
	scenarioYAML := []byte(`
profiles:
  - identity: addr-alice
    username: alice
    bio: scenario author
  - identity: addr-bob
    username: bob
follows:
  - follower: addr-bob
    target: addr-alice
posts:
  - author: addr-alice
    content: welcome to the mesh
    private: true
    reactions:
      - reactor: addr-bob
        liked: true
    comments:
      - commenter: addr-bob
        content: glad to be here
`)

	sc, err := ParseScenario(scenarioYAML)
	require.NoError(t, err)
	require.Len(t, sc.Profiles, 2)
	require.Len(t, sc.Posts, 1)

	engine := newTestEngine()
	seeder := NewSeeder(engine, 0)
	ctx := context.Background()

	require.NoError(t, seeder.ApplyScenario(ctx, sc))

	post, err := engine.GetPost(ctx, "addr-bob", 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), post.Likes)
	assert.Equal(t, 1, post.CommentCount)
	assert.True(t, engine.IsFollowing(ctx, "addr-alice", "addr-bob"))
}

func TestParseScenarioRejectsGarbage(t *testing.T) {
	_, err := ParseScenario([]byte("profiles: {not: [a, list"))
	assert.Error(t, err)
}

func TestApplyScenarioFailsOnConflict(t *testing.T) {
	sc := &Scenario{
		Profiles: []ScenarioProfile{
			{Identity: "addr-alice", Username: "alice"},
			{Identity: "addr-alice", Username: "alice-again"},
		},
	}

	seeder := NewSeeder(newTestEngine(), 0)
	err := seeder.ApplyScenario(context.Background(), sc)
	assert.Error(t, err)
}
