package matcherino

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMatchStats_SendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, statsPath, r.URL.Path)
		assert.Equal(t, "b1", r.URL.Query().Get("bountyId"))
		assert.Equal(t, "m9", r.URL.Query().Get("matchIds"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"body":{"matches":[{"id":"m9"}]}}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	raw, err := c.FetchMatchStats(context.Background(), "b1", "m9")
	require.NoError(t, err)

	body := raw.(map[string]any)["body"].(map[string]any)
	assert.Len(t, body["matches"], 1)
}

func TestFetchMatchStats_NumbersDecodeAsFloat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":5,"picks":{"teamB":[23]}}`))
	}))
	defer srv.Close()

	raw, err := New(WithBaseURL(srv.URL)).FetchMatchStats(context.Background(), "b", "5")
	require.NoError(t, err)

	m := raw.(map[string]any)
	assert.Equal(t, float64(5), m["id"])
	assert.Equal(t, []any{float64(23)}, m["picks"].(map[string]any)["teamB"])
}

func TestFetchMatchStats_Errors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "non-200", status: http.StatusBadGateway, body: "upstream down"},
		{name: "bad json", status: http.StatusOK, body: "{not json"},
		{name: "empty body", status: http.StatusOK, body: "", wantErr: ErrEmptyResponse},
		{name: "null body", status: http.StatusOK, body: "null", wantErr: ErrEmptyResponse},
		{name: "whitespace body", status: http.StatusOK, body: " \n", wantErr: ErrEmptyResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(WithBaseURL(srv.URL)).FetchMatchStats(context.Background(), "b", "m")
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			}
		})
	}
}

func TestFetchMatchStats_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New(WithBaseURL(srv.URL)).FetchMatchStats(ctx, "b", "m")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
