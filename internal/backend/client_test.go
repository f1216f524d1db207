package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"schemebot/internal/metrics"
	"schemebot/internal/utils"
	"schemebot/pkg/types"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := logtest.NewNullLogger()
	client, err := New(&types.Config{BackendURL: server.URL, BackendTimeoutSec: 2}, logger, metrics.New())
	require.NoError(t, err)

	return client
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestNew_RejectsBadURL(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	_, err := New(&types.Config{BackendURL: "ftp://example.com"}, logger, nil)
	assert.Error(t, err)

	_, err = New(&types.Config{BackendURL: "://nope"}, logger, nil)
	assert.Error(t, err)
}

func TestClient_Search(t *testing.T) {
	t.Run("sends query and keeps result order", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body := decodeBody(t, r)
			assert.Equal(t, map[string]any{"query": "scholarship for st student"}, body)

			_, _ = w.Write([]byte(`{"status":"success","results":[
				{"scheme_name":"ST Scholarship","category":"Education","details":"For ST students","score":0.92},
				{"scheme_name":"Post Matric","category":"Education","details":"...","score":0.95}
			]}`))
		})

		outcome, err := client.Search(context.Background(), "scholarship for st student")
		require.NoError(t, err)

		assert.True(t, outcome.Matched())
		require.Len(t, outcome.Results, 2)
		assert.Equal(t, "ST Scholarship", outcome.Results[0].Name)
		assert.Equal(t, "Post Matric", outcome.Results[1].Name)
		assert.Equal(t, 92, outcome.Results[0].MatchPercent())
	})

	t.Run("includes top_k when configured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := decodeBody(t, r)
			assert.Equal(t, float64(3), body["top_k"])
			_, _ = w.Write([]byte(`{"status":"success","results":[]}`))
		}))
		defer server.Close()

		logger, _ := logtest.NewNullLogger()
		client, err := New(&types.Config{BackendURL: server.URL + "/", SearchTopK: 3}, logger, nil)
		require.NoError(t, err)

		outcome, err := client.Search(context.Background(), "pension")
		require.NoError(t, err)
		assert.Empty(t, outcome.Results)
	})

	t.Run("non success status yields no results", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"No relevant schemes found","results":[{"scheme_name":"x","category":"y","details":"z","score":0.1}]}`))
		})

		outcome, err := client.Search(context.Background(), "zzz_no_match")
		require.NoError(t, err)

		assert.False(t, outcome.Matched())
		assert.Empty(t, outcome.Results)
	})

	t.Run("clamps out of range scores", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"success","results":[
				{"scheme_name":"a","category":"c","details":"d","score":1.0000002},
				{"scheme_name":"b","category":"c","details":"d","score":-0.01}
			]}`))
		})

		outcome, err := client.Search(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, 1.0, outcome.Results[0].Score)
		assert.Equal(t, 0.0, outcome.Results[1].Score)
	})

	t.Run("missing score violates contract", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"success","results":[{"scheme_name":"a","category":"c","details":"d"}]}`))
		})

		_, err := client.Search(context.Background(), "q")
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("non json body violates contract", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		})

		_, err := client.Search(context.Background(), "q")
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("bad status carries detail", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"detail":"Model not loaded. Run training script."}`))
		})

		_, err := client.Search(context.Background(), "q")

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
		assert.Equal(t, "Model not loaded. Run training script.", statusErr.Detail)
	})

	t.Run("long non ascii detail is cut on a character boundary", func(t *testing.T) {
		body := strings.Repeat("योजना ", 100)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(body))
		})

		_, err := client.Search(context.Background(), "q")

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.True(t, utf8.ValidString(statusErr.Detail))
		assert.Equal(t, 256, utf8.RuneCountInString(statusErr.Detail))
		assert.True(t, strings.HasPrefix(body, statusErr.Detail))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		release := make(chan struct{})
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			<-release
		})
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Search(ctx, "q")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClient_Verify(t *testing.T) {
	t.Run("serializes profile with absent numbers", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/verify", r.URL.Path)

			body := decodeBody(t, r)
			assert.Equal(t, "Widow Pension", body["scheme_name"])

			profile, ok := body["user_profile"].(map[string]any)
			require.True(t, ok)
			assert.NotContains(t, profile, "age")
			assert.Equal(t, float64(50000), profile["income"])
			assert.Equal(t, "Female", profile["gender"])
			assert.Equal(t, "", profile["caste"])
			assert.Equal(t, "Retired", profile["occupation"])

			_, _ = w.Write([]byte(`{"verdict":"ELIGIBLE","reasons":[],"scheme_details":{"benefits":"Rs 1000/month","documents":"Aadhaar","application":"Apply online"}}`))
		})

		result, err := client.Verify(context.Background(), "Widow Pension", types.UserProfile{
			Income:     utils.IntPtr(50000),
			Gender:     types.GenderFemale,
			Occupation: "Retired",
		})
		require.NoError(t, err)

		assert.True(t, result.Eligible())
		require.NotNil(t, result.Details)
		assert.Equal(t, "Rs 1000/month", result.Details.Benefits)
		assert.Equal(t, "Aadhaar", result.Details.Documents)
		assert.Equal(t, "Apply online", result.Details.ApplicationSteps)
	})

	t.Run("not eligible drops details", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"verdict":"NOT ELIGIBLE","reasons":["Applicant is not a widow"],"scheme_details":{"benefits":"b","documents":"d","application":"a"}}`))
		})

		result, err := client.Verify(context.Background(), "Widow Pension", types.UserProfile{Gender: types.GenderFemale})
		require.NoError(t, err)

		assert.Equal(t, types.VerdictNotEligible, result.Verdict)
		assert.Equal(t, []string{"Applicant is not a widow"}, result.Reasons)
		assert.Nil(t, result.Details)
	})

	t.Run("eligible without details is tolerated", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"verdict":"ELIGIBLE","reasons":["ok"],"scheme_details":null}`))
		})

		result, err := client.Verify(context.Background(), "Any", types.UserProfile{Gender: types.GenderMale})
		require.NoError(t, err)
		assert.True(t, result.Eligible())
		assert.Nil(t, result.Details)
	})

	t.Run("unknown verdict violates contract", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"verdict":"MAYBE","reasons":[]}`))
		})

		_, err := client.Verify(context.Background(), "Any", types.UserProfile{Gender: types.GenderMale})
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Scheme not found"}`))
		})

		_, err := client.Verify(context.Background(), "Ghost", types.UserProfile{Gender: types.GenderMale})

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.Code)
		assert.Contains(t, err.Error(), "Scheme not found")
	})
}

func TestClient_Health(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"running"}`))
	})

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "running", status)
}
