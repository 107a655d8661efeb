package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/models"
	"agora/internal/reward"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:  testSecret,
		Env:        "test",
		LikeReward: reward.DefaultLikeReward,
	}
	srv := NewServerWithDeps(cfg, nil, reward.NewMemorySink(), nil)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app
}

func authToken(t *testing.T, identity string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": identity,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, app *fiber.App, method, path, identity string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if identity != "" {
		req.Header.Set("Authorization", "Bearer "+authToken(t, identity))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	_ = resp.Body.Close()
	return body
}

func registerProfile(t *testing.T, app *fiber.App, identity, username string) {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/profiles", identity,
		map[string]string{"username": username})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateProfile(t *testing.T) {
	_, app := newTestServer(t)

	resp := doRequest(t, app, http.MethodPost, "/api/profiles", "addr-alice",
		map[string]string{"username": "alice", "bio": "first"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "addr-alice", body["identity"])

	// A profile is write-once; the second attempt must not change anything.
	resp = doRequest(t, app, http.MethodPost, "/api/profiles", "addr-alice",
		map[string]string{"username": "alice2"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, models.CodeAlreadyExists, body["code"])

	resp = doRequest(t, app, http.MethodGet, "/api/profiles/addr-alice", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, true, body["exists"])
}

func TestCreateProfileRequiresUsername(t *testing.T) {
	_, app := newTestServer(t)

	resp := doRequest(t, app, http.MethodPost, "/api/profiles", "addr-alice",
		map[string]string{"bio": "no name"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.CodeValidation, body["code"])
}

func TestGetProfileMissingIsZero(t *testing.T) {
	_, app := newTestServer(t)

	resp := doRequest(t, app, http.MethodGet, "/api/profiles/addr-ghost", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["exists"])
	assert.Equal(t, "", body["username"])
	assert.Equal(t, float64(0), body["follower_count"])
}

func TestAuthRequired(t *testing.T) {
	_, app := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, "/api/profiles", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePostRequiresProfile(t *testing.T) {
	_, app := newTestServer(t)

	resp := doRequest(t, app, http.MethodPost, "/api/posts", "addr-ghost",
		map[string]interface{}{"content": "hello"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.CodeProfileRequired, body["code"])
}

func TestPostLifecycle(t *testing.T) {
	_, app := newTestServer(t)
	registerProfile(t, app, "addr-alice", "alice")

	resp := doRequest(t, app, http.MethodPost, "/api/posts", "addr-alice",
		map[string]interface{}{"content": "first post"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "first post", body["content"])

	// Post ids are assigned sequentially.
	resp = doRequest(t, app, http.MethodPost, "/api/posts", "addr-alice",
		map[string]interface{}{"content": "second post"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(2), body["id"])

	resp = doRequest(t, app, http.MethodGet, "/api/posts/1", "addr-alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "first post", body["content"])

	resp = doRequest(t, app, http.MethodGet, "/api/posts/42", "addr-alice", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/posts/abc", "addr-alice", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPrivatePostVisibility(t *testing.T) {
	_, app := newTestServer(t)
	registerProfile(t, app, "addr-alice", "alice")
	registerProfile(t, app, "addr-bob", "bob")

	resp := doRequest(t, app, http.MethodPost, "/api/posts", "addr-alice",
		map[string]interface{}{"content": "secret", "private": true})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// A stranger cannot see the private post.
	resp = doRequest(t, app, http.MethodGet, "/api/posts/1", "addr-bob", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.CodePrivateAccessDenied, body["code"])

	// The author always can.
	resp = doRequest(t, app, http.MethodGet, "/api/posts/1", "addr-alice", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// Following grants access immediately.
	resp = doRequest(t, app, http.MethodPost, "/api/follows", "addr-bob",
		map[string]string{"target": "addr-alice"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/posts/1", "addr-bob", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// Unfollowing revokes it just as immediately.
	resp = doRequest(t, app, http.MethodDelete, "/api/follows/addr-alice", "addr-bob", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/posts/1", "addr-bob", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestFollowEndpoints(t *testing.T) {
	_, app := newTestServer(t)
	registerProfile(t, app, "addr-alice", "alice")
	registerProfile(t, app, "addr-bob", "bob")

	resp := doRequest(t, app, http.MethodPost, "/api/follows", "addr-bob",
		map[string]string{"target": "addr-bob"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.CodeSelfFollow, body["code"])

	resp = doRequest(t, app, http.MethodPost, "/api/follows", "addr-bob",
		map[string]string{"target": "addr-alice"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/follows", "addr-bob",
		map[string]string{"target": "addr-alice"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, models.CodeAlreadyFollowing, body["code"])

	resp = doRequest(t, app, http.MethodGet, "/api/profiles/addr-alice/followers/addr-bob", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, true, body["following"])

	resp = doRequest(t, app, http.MethodGet, "/api/profiles/addr-alice/followers", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, []interface{}{"addr-bob"}, body["followers"])

	resp = doRequest(t, app, http.MethodDelete, "/api/follows/addr-alice", "addr-bob", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, "/api/follows/addr-alice", "addr-bob", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, models.CodeNotFollowing, body["code"])

	resp = doRequest(t, app, http.MethodGet, "/api/profiles/addr-alice/followers/addr-bob", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["following"])
}

func TestReactionsAndRewards(t *testing.T) {
	_, app := newTestServer(t)
	registerProfile(t, app, "addr-alice", "alice")
	registerProfile(t, app, "addr-bob", "bob")
	registerProfile(t, app, "addr-carol", "carol")

	resp := doRequest(t, app, http.MethodPost, "/api/posts", "addr-alice",
		map[string]interface{}{"content": "react to me"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/posts/1/reactions", "addr-bob",
		map[string]interface{}{"liked": true})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["likes"])
	assert.Equal(t, float64(0), body["dislikes"])

	// One reaction per identity per post, permanently.
	resp = doRequest(t, app, http.MethodPost, "/api/posts/1/reactions", "addr-bob",
		map[string]interface{}{"liked": false})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, models.CodeAlreadyReacted, body["code"])

	// A dislike counts but never credits.
	resp = doRequest(t, app, http.MethodPost, "/api/posts/1/reactions", "addr-carol",
		map[string]interface{}{"liked": false})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(1), body["likes"])
	assert.Equal(t, float64(1), body["dislikes"])

	// Exactly one like landed, so the author holds exactly one reward.
	resp = doRequest(t, app, http.MethodGet, "/api/rewards/balance", "addr-alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(reward.DefaultLikeReward), body["balance"])
	assert.Equal(t, float64(reward.RewardDecimals), body["decimals"])

	resp = doRequest(t, app, http.MethodGet, "/api/rewards/balance", "addr-bob", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(0), body["balance"])

	// Missing liked field is a validation error, not a reaction.
	resp = doRequest(t, app, http.MethodPost, "/api/posts/1/reactions", "addr-alice",
		map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCommentEndpoints(t *testing.T) {
	_, app := newTestServer(t)
	registerProfile(t, app, "addr-alice", "alice")
	registerProfile(t, app, "addr-bob", "bob")

	resp := doRequest(t, app, http.MethodPost, "/api/posts", "addr-alice",
		map[string]interface{}{"content": "discuss", "private": true})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Commenting follows the same visibility rule as reading.
	resp = doRequest(t, app, http.MethodPost, "/api/posts/1/comments", "addr-bob",
		map[string]string{"content": "let me in"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.CodeCommentForbidden, body["code"])

	resp = doRequest(t, app, http.MethodGet, "/api/posts/1/comments", "addr-bob", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/follows", "addr-bob",
		map[string]string{"target": "addr-alice"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	for i, content := range []string{"first", "second", "third"} {
		commenter := "addr-alice"
		if i%2 == 1 {
			commenter = "addr-bob"
		}
		resp = doRequest(t, app, http.MethodPost, "/api/posts/1/comments", commenter,
			map[string]string{"content": content})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		body = decodeBody(t, resp)
		assert.Equal(t, float64(i), body["index"])
	}

	resp = doRequest(t, app, http.MethodGet, "/api/posts/1/comments", "addr-alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(3), body["count"])
	comments := body["comments"].([]interface{})
	require.Len(t, comments, 3)
	for i, want := range []string{"first", "second", "third"} {
		comment := comments[i].(map[string]interface{})
		assert.Equal(t, want, comment["content"], fmt.Sprintf("comment %d", i))
	}

	resp = doRequest(t, app, http.MethodPost, "/api/posts/1/comments", "addr-alice",
		map[string]string{"content": ""})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/posts/9/comments", "addr-alice", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestHealthEndpoints(t *testing.T) {
	_, app := newTestServer(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		resp := doRequest(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
}
