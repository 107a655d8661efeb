// Command main seeds a running Agora server with demo data over its HTTP API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"agora/internal/config"
	"agora/internal/models"
	"agora/internal/seed"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	addr := flag.String("addr", "http://localhost:8460", "Base URL of the running server")
	numProfiles := flag.Int("profiles", 25, "Number of profiles to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	scenario := flag.String("scenario", "", "YAML scenario file (overrides random seeding)")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible meshes (0 = nondeterministic)")
	flag.Parse()

	// The seeder signs its own tokens, so it needs the server's JWT secret.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client := &apiClient{
		baseURL: *addr,
		secret:  cfg.JWTSecret,
		http:    &http.Client{Timeout: 10 * time.Second},
	}

	seeder := seed.NewSeeder(client, *randSeed)
	ctx := context.Background()

	if *scenario != "" {
		sc, err := seed.LoadScenario(*scenario)
		if err != nil {
			log.Fatalf("Failed to load scenario: %v", err)
		}
		if err := seeder.ApplyScenario(ctx, sc); err != nil {
			log.Fatalf("Scenario failed: %v", err)
		}
		log.Printf("Scenario %s applied", *scenario)
		return
	}

	if _, err := seeder.SeedMesh(ctx, *numProfiles, *numPosts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

// apiClient implements seed.Backend against the HTTP API, acting as each
// identity in turn by minting short-lived tokens.
type apiClient struct {
	baseURL string
	secret  string
	http    *http.Client
}

func (c *apiClient) token(identity string) (string, error) {
	claims := jwt.MapClaims{
		"sub": identity,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.secret))
}

func (c *apiClient) do(ctx context.Context, method, path, identity string, reqBody, out interface{}) error {
	var buf bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.token(identity)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		// Surface the server's machine code so the seeder can distinguish
		// expected conflicts from real failures.
		var errResp models.ErrorResponse
		if decErr := json.NewDecoder(resp.Body).Decode(&errResp); decErr == nil && errResp.Code != "" {
			return &models.AppError{Code: errResp.Code, Message: errResp.Error}
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *apiClient) CreateProfile(ctx context.Context, caller, username, bio string) (models.Profile, error) {
	var profile models.Profile
	err := c.do(ctx, http.MethodPost, "/api/profiles", caller,
		map[string]string{"username": username, "bio": bio}, &profile)
	return profile, err
}

func (c *apiClient) Follow(ctx context.Context, caller, target string) error {
	return c.do(ctx, http.MethodPost, "/api/follows", caller,
		map[string]string{"target": target}, nil)
}

func (c *apiClient) CreatePost(ctx context.Context, caller, content string, private bool) (models.Post, error) {
	var post models.Post
	err := c.do(ctx, http.MethodPost, "/api/posts", caller,
		map[string]interface{}{"content": content, "private": private}, &post)
	return post, err
}

func (c *apiClient) React(ctx context.Context, caller string, id uint64, liked bool) (models.Post, error) {
	var post models.Post
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/reactions", id), caller,
		map[string]interface{}{"liked": liked}, &post)
	return post, err
}

func (c *apiClient) AddComment(ctx context.Context, caller string, id uint64, content string) (models.Comment, error) {
	var comment models.Comment
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", id), caller,
		map[string]string{"content": content}, &comment)
	return comment, err
}
