package splitsio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/timeit/internal/model"
)

const runJSON = `{
  "run": {
    "id": "4b2e",
    "default_timing": "real",
    "realtime_duration_ms": 125000,
    "gametime_duration_ms": 0,
    "created_at": "2024-05-01T10:00:00Z",
    "game": {"id": "1", "name": "Celeste", "shortname": "celeste"},
    "category": {"id": "9", "name": "Any%"},
    "segments": [
      {"id": "s1", "name": "City", "segment_number": 0,
       "realtime_end_ms": 60000, "realtime_shortest_duration_ms": 58000,
       "gametime_end_ms": 59000, "gametime_shortest_duration_ms": 57000},
      {"id": "s2", "name": "Site", "display_name": "Old Site", "segment_number": 1,
       "realtime_end_ms": 0, "realtime_shortest_duration_ms": null, "realtime_skipped": true,
       "gametime_end_ms": 100000, "gametime_shortest_duration_ms": 40000},
      {"id": "s3", "name": "Resort", "segment_number": 2,
       "realtime_end_ms": 125000, "realtime_shortest_duration_ms": 61000, "realtime_skipped": true}
    ]
  }
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestGetRun(t *testing.T) {
	var gotPath, gotQuery, gotAccept string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(runJSON))
	})

	run, err := c.GetRun(context.Background(), "4b2e", true)
	require.NoError(t, err)
	assert.Equal(t, "/runs/4b2e", gotPath)
	assert.Equal(t, "historic=1", gotQuery)
	assert.Equal(t, "application/json", gotAccept)

	assert.Equal(t, "Celeste - Any%", run.Title())
	assert.Equal(t, model.ValidDuration(125*time.Second), run.Duration(model.TimingReal))
	assert.False(t, run.Duration(model.TimingGame).Valid)
	assert.Equal(t, 2024, run.CreatedTime().Year())
	require.Len(t, run.Segments, 3)
}

func TestGetRunWithoutHistory(t *testing.T) {
	var gotQuery string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(runJSON))
	})
	_, err := c.GetRun(context.Background(), "4b2e", false)
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestRunSeedRealtime(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(runJSON))
	})
	run, err := c.GetRun(context.Background(), "4b2e", false)
	require.NoError(t, err)

	seed := run.Seed("")
	assert.Equal(t, "4b2e", seed.ID)
	assert.Equal(t, "Celeste", seed.Game)
	assert.Equal(t, "Any%", seed.Category)
	assert.Equal(t, model.TimingReal, seed.Timing)
	require.Len(t, seed.Segments, 3)

	assert.Equal(t, model.ValidDuration(58*time.Second), seed.Segments[0].Best)
	assert.Equal(t, model.ValidDuration(60*time.Second), seed.Segments[0].PersonalBest)

	assert.Equal(t, "Old Site", seed.Segments[1].Name)
	assert.False(t, seed.Segments[1].Best.Valid)
	assert.False(t, seed.Segments[1].PersonalBest.Valid)

	assert.Equal(t, model.ValidDuration(61*time.Second), seed.Segments[2].Best)
	assert.False(t, seed.Segments[2].PersonalBest.Valid)
}

func TestRunSeedGametime(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(runJSON))
	})
	run, err := c.GetRun(context.Background(), "4b2e", false)
	require.NoError(t, err)

	seed := run.Seed(model.TimingGame)
	assert.Equal(t, model.TimingGame, seed.Timing)
	assert.Equal(t, model.ValidDuration(57*time.Second), seed.Segments[0].Best)
	assert.Equal(t, model.ValidDuration(100*time.Second), seed.Segments[1].PersonalBest)
	assert.False(t, seed.Segments[2].Best.Valid)
}

func TestRunnerEndpoints(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/runners/glacials/pbs":
			_, _ = w.Write([]byte(`{"pbs":[{"id":"a"},{"id":"b"}]}`))
		case "/runners/glacials/runs":
			_, _ = w.Write([]byte(`{"runs":[{"id":"c"}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	pbs, err := c.RunnerPBs(context.Background(), "glacials")
	require.NoError(t, err)
	assert.Len(t, pbs, 2)

	runs, err := c.RunnerRuns(context.Background(), "glacials")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "c", runs[0].Title())
}

func TestGameEndpoints(t *testing.T) {
	var gotSearch string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/games":
			gotSearch = r.URL.Query().Get("search")
			_, _ = w.Write([]byte(`{"games":[{"id":"1","name":"Super Mario 64","shortname":"sm64"}]}`))
		case "/games/sm64/categories":
			_, _ = w.Write([]byte(`{"categories":[{"id":"1","name":"120 Star"},{"id":"2","name":"16 Star"}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	games, err := c.SearchGames(context.Background(), "mario 64")
	require.NoError(t, err)
	assert.Equal(t, "mario 64", gotSearch)
	require.Len(t, games, 1)
	assert.Equal(t, "sm64", games[0].Shortname)

	cats, err := c.GameCategories(context.Background(), "sm64")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "16 Star", cats[1].Name)
}

func TestErrors(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/runs/missing":
			http.NotFound(w, r)
		case "/runs/broken":
			_, _ = w.Write([]byte(`{"run":`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	})

	_, err := c.GetRun(context.Background(), "missing", false)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.GetRun(context.Background(), "broken", false)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = c.SearchGames(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestContextCancel(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(runJSON))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetRun(ctx, "4b2e", false)
	assert.Error(t, err)
}

func TestTitleFallbacks(t *testing.T) {
	assert.Equal(t, "x", Run{ID: "x"}.Title())
	assert.Equal(t, "G", Run{ID: "x", Game: &Game{Name: "G"}}.Title())
	assert.Equal(t, "C", Run{ID: "x", Category: &Category{Name: "C"}}.Title())
	assert.Equal(t, model.TimingGame, Run{DefaultTiming: "game"}.Timing(""))
	assert.Equal(t, model.TimingReal, Run{DefaultTiming: "game"}.Timing(model.TimingReal))
}
