package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itunesBody = `{"resultCount":2,"results":[
  {"trackId":1,"trackName":"Redbone","artistName":"Childish Gambino","trackViewUrl":"https://music.apple.com/us/album/redbone/1?i=1"},
  {"trackId":2,"trackName":"Redbone Remix","artistName":"Someone","trackViewUrl":"https://music.apple.com/us/album/redbone/2?i=2"}
]}`

func TestITunesService_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "redbone", r.URL.Query().Get("term"))
		assert.Equal(t, "song", r.URL.Query().Get("entity"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		_, _ = w.Write([]byte(itunesBody))
	}))
	defer server.Close()

	service := newITunesService(resty.New(), server.URL, "")

	songs, err := service.Search(context.Background(), "redbone", DefaultSearchLimit)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "Redbone", songs[0].Title)
	assert.Equal(t, "Childish Gambino", songs[0].Artist)
	assert.Equal(t, "https://music.apple.com/us/album/redbone/1?i=1", songs[0].ExternalURL)
}

func TestITunesService_ProxyFallback(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer direct.Close()

	var proxied atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied.Add(1)
		target, err := url.Parse(r.URL.Query().Get("url"))
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "redbone", target.Query().Get("term"))
		_, _ = w.Write([]byte(itunesBody))
	}))
	defer proxy.Close()

	service := newITunesService(resty.New(), direct.URL, proxy.URL+"/?url=")

	songs, err := service.Search(context.Background(), "redbone", DefaultSearchLimit)
	require.NoError(t, err)
	assert.Len(t, songs, 2)
	assert.Equal(t, int32(1), proxied.Load())
}

func TestITunesService_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"blocked", http.StatusForbidden, ``, ErrUpstreamUnavailable},
		{"not json", http.StatusOK, `callback(`, ErrMalformedResponse},
		{"no results key", http.StatusOK, `{"resultCount":0}`, ErrMalformedResponse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			service := newITunesService(resty.New(), server.URL, "")

			_, err := service.Search(context.Background(), "redbone", DefaultSearchLimit)
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestITunesService_EmptyResultsAreValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultCount":0,"results":[]}`))
	}))
	defer server.Close()

	service := newITunesService(resty.New(), server.URL, "")

	songs, err := service.Search(context.Background(), "qqqqqq", DefaultSearchLimit)
	require.NoError(t, err)
	assert.NotNil(t, songs)
	assert.Empty(t, songs)
}

func TestSampleCatalog_Search(t *testing.T) {
	catalog := NewSampleCatalog()
	ctx := context.Background()

	songs, err := catalog.Search(ctx, "FRANK", DefaultSearchLimit)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	for _, song := range songs {
		assert.Equal(t, "Frank Ocean", song.Artist)
	}

	songs, err = catalog.Search(ctx, "queen", DefaultSearchLimit)
	require.NoError(t, err)
	// Title "Dancing Queen" and artist "Queen" both match
	assert.Len(t, songs, 2)

	songs, err = catalog.Search(ctx, "e", 3)
	require.NoError(t, err)
	assert.Len(t, songs, 3)

	songs, err = catalog.Search(ctx, "no such song anywhere", DefaultSearchLimit)
	require.NoError(t, err)
	assert.NotNil(t, songs)
	assert.Empty(t, songs)
}
