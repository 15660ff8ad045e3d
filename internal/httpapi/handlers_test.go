package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/brawler"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/draft"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/tracker"
	pub "github.com/DoyleJ11/brawl-draft-tracker/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	raw string
	err error
}

func (f *stubFetcher) FetchMatchStats(ctx context.Context, bountyID, matchID string) (any, error) {
	if f.err != nil {
		return nil, f.err
	}
	var v any
	if err := json.Unmarshal([]byte(f.raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

const upstream = `{"body":{"matches":[{"id":"5","status":"in_progress",
	"entrantA":{"entrantName":"Red"},"entrantB":{"entrantName":"Blue"},
	"picks":{"teamA":["Shelly"],"teamB":[23]}}]}}`

func newServer(t *testing.T, secret string, f tracker.Fetcher) (*httptest.Server, *tracker.Tracker) {
	t.Helper()
	tr := tracker.New(f, brawler.NewIdentityMap(map[string]string{"23": "Colt"}), tracker.Config{}, nil)
	srv := httptest.NewServer(SetupRoutes(Options{
		Tracker:       tr,
		ControlSecret: secret,
		CORSOrigins:   []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return srv, tr
}

func getDraft(t *testing.T, srv *httptest.Server) pub.Draft {
	t.Helper()
	resp, err := http.Get(srv.URL + "/draft")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var d pub.Draft
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	return d
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t, "", &stubFetcher{raw: upstream})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])

	resp2, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestGetDraft_BeforeAnySession(t *testing.T) {
	srv, _ := newServer(t, "", &stubFetcher{raw: upstream})

	d := getDraft(t, srv)
	assert.Equal(t, draft.StatusUnknown, d.Status)
	assert.Equal(t, []string{}, d.TeamA.Picks)
	assert.Equal(t, []string{}, d.Diff.TeamB.NewBans)
}

func TestSetMatch_UpdatesDraft(t *testing.T) {
	srv, tr := newServer(t, "", &stubFetcher{raw: upstream})

	resp, err := http.PostForm(srv.URL+"/set_match", url.Values{"match_id": {"5"}, "bounty_id": {"b1"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Session pub.SessionInfo `json:"session"`
		Draft   pub.Draft       `json:"draft"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "b1", body.Session.BountyID)
	assert.Equal(t, tracker.PhasePolling, body.Session.Phase)
	assert.Equal(t, []string{"Colt"}, body.Draft.TeamB.Picks)

	d := getDraft(t, srv)
	assert.Equal(t, draft.StatusInProgress, d.Status)
	assert.Equal(t, "Red", d.TeamA.Name)
	assert.Equal(t, []string{"Shelly"}, d.TeamA.Picks)
	assert.Equal(t, []string{"Shelly"}, d.Diff.TeamA.NewPicks)

	sess, ok := tr.Session()
	require.True(t, ok)
	assert.Equal(t, "5", sess.MatchID)
}

func TestSetMatch_DraftJSONHasEmbeddedDiff(t *testing.T) {
	srv, _ := newServer(t, "", &stubFetcher{raw: upstream})

	resp, err := http.PostForm(srv.URL+"/set_match", url.Values{"match_id": {"5"}, "bounty_id": {"b1"}})
	require.NoError(t, err)
	resp.Body.Close()

	raw, err := http.Get(srv.URL + "/draft")
	require.NoError(t, err)
	defer raw.Body.Close()

	var m map[string]any
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&m))
	for _, key := range []string{"status", "map", "mode", "teamA", "teamB", "_diff"} {
		assert.Contains(t, m, key)
	}
}

func TestSetMatch_Secret(t *testing.T) {
	cases := []struct {
		name   string
		form   url.Values
		status int
	}{
		{name: "missing secret", form: url.Values{"match_id": {"5"}, "bounty_id": {"b1"}}, status: http.StatusUnauthorized},
		{name: "wrong secret", form: url.Values{"match_id": {"5"}, "bounty_id": {"b1"}, "secret": {"nope"}}, status: http.StatusUnauthorized},
		{name: "right secret", form: url.Values{"match_id": {"5"}, "bounty_id": {"b1"}, "secret": {"s3cret"}}, status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newServer(t, "s3cret", &stubFetcher{raw: upstream})

			resp, err := http.PostForm(srv.URL+"/set_match", tc.form)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestSetMatch_MissingIDs(t *testing.T) {
	srv, _ := newServer(t, "", &stubFetcher{raw: upstream})

	resp, err := http.PostForm(srv.URL+"/set_match", url.Values{"match_id": {"5"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSetMatch_UpstreamDownStillSetsSession(t *testing.T) {
	srv, tr := newServer(t, "", &stubFetcher{err: errors.New("boom")})

	resp, err := http.PostForm(srv.URL+"/set_match", url.Values{"match_id": {"5"}, "bounty_id": {"b1"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tracker.PhasePolling, tr.Phase())

	d := getDraft(t, srv)
	assert.Equal(t, draft.StatusUnknown, d.Status)
}

func TestClearSession(t *testing.T) {
	srv, tr := newServer(t, "s3cret", &stubFetcher{raw: upstream})
	_, err := tr.SetSession(context.Background(), "b1", "5")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/session", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, tracker.PhasePolling, tr.Phase())

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/session", nil)
	req.Header.Set("X-Control-Secret", "s3cret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, tracker.PhaseIdle, tr.Phase())

	sresp, err := http.Get(srv.URL + "/session")
	require.NoError(t, err)
	defer sresp.Body.Close()
	var info pub.SessionInfo
	require.NoError(t, json.NewDecoder(sresp.Body).Decode(&info))
	assert.Equal(t, tracker.PhaseIdle, info.Phase)
	assert.Equal(t, 1, info.Version)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newServer(t, "", &stubFetcher{raw: upstream})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/draft", nil)
	req.Header.Set("Origin", "https://overlay.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWSOrigins(t *testing.T) {
	got := wsOrigins([]string{"*", "https://overlay.example", "http://localhost:3000", ""})
	assert.Equal(t, []string{"*", "overlay.example", "localhost:3000"}, got)
	assert.True(t, strings.HasPrefix(got[1], "overlay"))
}
