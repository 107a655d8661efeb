package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a deterministic seeding script. Posts are created in file
// order, so their ids are predictable: the first post gets id 1.
type Scenario struct {
	Profiles []ScenarioProfile `yaml:"profiles"`
	Follows  []ScenarioFollow  `yaml:"follows"`
	Posts    []ScenarioPost    `yaml:"posts"`
}

type ScenarioProfile struct {
	Identity string `yaml:"identity"`
	Username string `yaml:"username"`
	Bio      string `yaml:"bio"`
}

type ScenarioFollow struct {
	Follower string `yaml:"follower"`
	Target   string `yaml:"target"`
}

type ScenarioPost struct {
	Author    string             `yaml:"author"`
	Content   string             `yaml:"content"`
	Private   bool               `yaml:"private"`
	Reactions []ScenarioReaction `yaml:"reactions"`
	Comments  []ScenarioComment  `yaml:"comments"`
}

type ScenarioReaction struct {
	Reactor string `yaml:"reactor"`
	Liked   bool   `yaml:"liked"`
}

type ScenarioComment struct {
	Commenter string `yaml:"commenter"`
	Content   string `yaml:"content"`
}

// ParseScenario decodes a YAML scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// LoadScenario reads and decodes a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ApplyScenario replays the scenario against the backend. Unlike SeedMesh,
// every operation must succeed; a conflict in a scenario file is a bug in
// the scenario.
func (s *Seeder) ApplyScenario(ctx context.Context, sc *Scenario) error {
	for _, p := range sc.Profiles {
		if _, err := s.backend.CreateProfile(ctx, p.Identity, p.Username, p.Bio); err != nil {
			return fmt.Errorf("profile %s: %w", p.Identity, err)
		}
	}
	for _, f := range sc.Follows {
		if err := s.backend.Follow(ctx, f.Follower, f.Target); err != nil {
			return fmt.Errorf("follow %s -> %s: %w", f.Follower, f.Target, err)
		}
	}
	for _, p := range sc.Posts {
		post, err := s.backend.CreatePost(ctx, p.Author, p.Content, p.Private)
		if err != nil {
			return fmt.Errorf("post by %s: %w", p.Author, err)
		}
		for _, r := range p.Reactions {
			if _, err := s.backend.React(ctx, r.Reactor, post.ID, r.Liked); err != nil {
				return fmt.Errorf("reaction on post %d by %s: %w", post.ID, r.Reactor, err)
			}
		}
		for _, cm := range p.Comments {
			if _, err := s.backend.AddComment(ctx, cm.Commenter, post.ID, cm.Content); err != nil {
				return fmt.Errorf("comment on post %d by %s: %w", post.ID, cm.Commenter, err)
			}
		}
	}
	return nil
}
