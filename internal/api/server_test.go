package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalitypuzzles/cardboard-server/internal/auth"
	"github.com/cardinalitypuzzles/cardboard-server/internal/notify"
	"github.com/cardinalitypuzzles/cardboard-server/internal/ratelimit"
	"github.com/cardinalitypuzzles/cardboard-server/internal/search"
	"github.com/cardinalitypuzzles/cardboard-server/internal/service"
	"github.com/cardinalitypuzzles/cardboard-server/internal/store/sqlite"
	"github.com/cardinalitypuzzles/cardboard-server/internal/validation"
)

const (
	testMemberToken = "member-token"
	testAdminToken  = "admin-token"
)

// apiTestServer wraps the HTTP server with a humatest client.
type apiTestServer struct {
	*Server
	client humatest.TestAPI
}

func setupTestServer(t *testing.T) *apiTestServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.NewIndex(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	sink := notify.NewNoopSink()
	limiter := ratelimit.New(100, 100)

	searchService := service.NewSearchService(st, idx, logger)
	huntService := service.NewHuntService(st, searchService, logger)
	puzzleService := service.NewPuzzleService(st, searchService, sink, sink, limiter, logger)
	answerService := service.NewAnswerService(st, searchService, sink, sink, limiter, logger)

	s := NewServer(
		Services{
			Hunt:   huntService,
			Puzzle: puzzleService,
			Answer: answerService,
			Search: searchService,
		},
		auth.NewStaticAuthorizer(testMemberToken, testAdminToken),
		validation.New(),
		Options{CORSOrigins: []string{"*"}},
		logger,
	)

	return &apiTestServer{
		Server: s,
		client: humatest.Wrap(t, s.api),
	}
}

func authHeader(token string) string {
	return "Authorization: Bearer " + token
}

// createHunt creates a hunt through the API and returns its ID.
func (ts *apiTestServer) createHunt(t *testing.T, name string, queueEnabled bool) string {
	t.Helper()

	resp := ts.client.Post("/api/v1/hunts",
		authHeader(testAdminToken),
		map[string]any{"name": name, "answer_queue_enabled": queueEnabled},
	)
	require.Equal(t, http.StatusOK, resp.Code, "create hunt failed: %s", resp.Body.String())

	var hunt HuntResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &hunt))
	return hunt.ID
}

// createPuzzle creates a puzzle through the API and returns its ID.
func (ts *apiTestServer) createPuzzle(t *testing.T, huntID, name string, isMeta bool) string {
	t.Helper()

	resp := ts.client.Post("/api/v1/hunts/"+huntID+"/puzzles",
		authHeader(testMemberToken),
		map[string]any{
			"name":    name,
			"url":     "https://example.com/" + name,
			"is_meta": isMeta,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code, "create puzzle failed: %s", resp.Body.String())

	var p PuzzleResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &p))
	return p.ID
}

func TestMissingAuthorizationRejected(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.client.Get("/api/v1/hunts")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateHuntRequiresAdmin(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.client.Post("/api/v1/hunts",
		authHeader(testMemberToken),
		map[string]any{"name": "Winter Hunt"},
	)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.client.Post("/api/v1/hunts",
		authHeader(testAdminToken),
		map[string]any{"name": "Winter Hunt"},
	)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCreateHuntBootstrapsTags(t *testing.T) {
	ts := setupTestServer(t)
	huntID := ts.createHunt(t, "Winter Hunt", false)

	resp := ts.client.Get("/api/v1/hunts/"+huntID+"/tags", authHeader(testMemberToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var body ListTagsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Tags, 3)
	for _, tag := range body.Tags {
		assert.True(t, tag.IsDefault)
	}
}

func TestCreatePuzzleValidation(t *testing.T) {
	ts := setupTestServer(t)
	huntID := ts.createHunt(t, "Winter Hunt", false)

	resp := ts.client.Post("/api/v1/hunts/"+huntID+"/puzzles",
		authHeader(testMemberToken),
		map[string]any{"name": "Broken", "url": "not a url"},
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSolvePuzzleOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	huntID := ts.createHunt(t, "Winter Hunt", false)
	puzzleID := ts.createPuzzle(t, huntID, "tollbooth", false)

	resp := ts.client.Post("/api/v1/puzzles/"+puzzleID+"/guesses",
		authHeader(testMemberToken),
		map[string]any{"text": "final answer"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var guess GuessResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &guess))
	assert.Equal(t, "FINALANSWER", guess.Text)
	assert.Equal(t, "CORRECT", guess.Status)

	resp = ts.client.Get("/api/v1/puzzles/"+puzzleID, authHeader(testMemberToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var p PuzzleResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &p))
	assert.Equal(t, "SOLVED", p.Status)
	assert.Equal(t, "FINALANSWER", p.Answer)
}

func TestAnswerQueueFlowOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	huntID := ts.createHunt(t, "Winter Hunt", true)
	puzzleID := ts.createPuzzle(t, huntID, "tollbooth", false)

	resp := ts.client.Post("/api/v1/puzzles/"+puzzleID+"/guesses",
		authHeader(testMemberToken),
		map[string]any{"text": "maybe"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var guess GuessResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &guess))
	assert.Equal(t, "NEW", guess.Status)

	// Members cannot read or work the queue.
	resp = ts.client.Get("/api/v1/hunts/"+huntID+"/queue", authHeader(testMemberToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.client.Get("/api/v1/hunts/"+huntID+"/queue", authHeader(testAdminToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var queue ListGuessesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &queue))
	require.Len(t, queue.Guesses, 1)

	resp = ts.client.Put("/api/v1/guesses/"+guess.ID,
		authHeader(testAdminToken),
		map[string]any{"status": "CORRECT"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.client.Get("/api/v1/puzzles/"+puzzleID, authHeader(testMemberToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var p PuzzleResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &p))
	assert.Equal(t, "SOLVED", p.Status)
}

func TestGuessVerdictRequiresAdmin(t *testing.T) {
	ts := setupTestServer(t)
	huntID := ts.createHunt(t, "Winter Hunt", true)
	puzzleID := ts.createPuzzle(t, huntID, "tollbooth", false)

	resp := ts.client.Post("/api/v1/puzzles/"+puzzleID+"/guesses",
		authHeader(testMemberToken),
		map[string]any{"text": "maybe"},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var guess GuessResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &guess))

	resp = ts.client.Put("/api/v1/guesses/"+guess.ID,
		authHeader(testMemberToken),
		map[string]any{"status": "CORRECT"},
	)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestMetaAssignmentCycleRejected(t *testing.T) {
	ts := setupTestServer(t)
	huntID := ts.createHunt(t, "Winter Hunt", false)
	metaA := ts.createPuzzle(t, huntID, "meta-a", true)
	metaB := ts.createPuzzle(t, huntID, "meta-b", true)

	resp := ts.client.Put("/api/v1/puzzles/"+metaA+"/metas",
		authHeader(testMemberToken),
		map[string]any{"meta_ids": []string{metaB}},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.client.Put("/api/v1/puzzles/"+metaB+"/metas",
		authHeader(testMemberToken),
		map[string]any{"meta_ids": []string{metaA}},
	)
	assert.Equal(t, http.StatusConflict, resp.Code)

	var apiErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	assert.Equal(t, "CYCLE", apiErr.Code)
}

func TestTreeEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	huntID := ts.createHunt(t, "Winter Hunt", false)
	meta := ts.createPuzzle(t, huntID, "meta", true)
	feeder := ts.createPuzzle(t, huntID, "feeder", false)

	resp := ts.client.Put("/api/v1/puzzles/"+feeder+"/metas",
		authHeader(testMemberToken),
		map[string]any{"meta_ids": []string{meta}},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.client.Get("/api/v1/hunts/"+huntID+"/tree", authHeader(testMemberToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var body TreeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Rows, 2)
	assert.Equal(t, meta, body.Rows[0].Puzzle.ID)
	assert.Equal(t, feeder, body.Rows[1].Puzzle.ID)
	assert.Equal(t, meta, body.Rows[1].ParentID)
	assert.Equal(t, 1, body.Rows[1].Depth)
}

func TestDeleteAndRestorePuzzleOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	huntID := ts.createHunt(t, "Winter Hunt", false)
	puzzleID := ts.createPuzzle(t, huntID, "tollbooth", false)

	resp := ts.client.Delete("/api/v1/puzzles/"+puzzleID, authHeader(testMemberToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.client.Get("/api/v1/puzzles/"+puzzleID, authHeader(testMemberToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.client.Post("/api/v1/puzzles/"+puzzleID+"/restore", authHeader(testMemberToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.client.Get("/api/v1/puzzles/"+puzzleID, authHeader(testMemberToken))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestSearchEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	huntID := ts.createHunt(t, "Winter Hunt", false)
	puzzleID := ts.createPuzzle(t, huntID, "tollbooth", false)

	// Creation indexes the puzzle as a post-commit effect.
	resp := ts.client.Get("/api/v1/hunts/"+huntID+"/search?q=tollbooth", authHeader(testMemberToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Hits)
	assert.Equal(t, puzzleID, body.Hits[0].ID)
}
