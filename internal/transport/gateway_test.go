package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_Joined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer gw-token", r.Header.Get("Authorization"))

		switch r.URL.EscapedPath() {
		case "/channels/%23ops":
			w.WriteHeader(http.StatusOK)
		case "/channels/%23nowhere":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "gw-token", 5*time.Second)

	joined, err := g.Joined(context.Background(), "#ops")
	require.NoError(t, err)
	assert.True(t, joined)

	joined, err = g.Joined(context.Background(), "#nowhere")
	require.NoError(t, err)
	assert.False(t, joined)

	_, err = g.Joined(context.Background(), "#broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway API 500")
}

func TestGateway_Send(t *testing.T) {
	var got messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/%23ops/messages", r.URL.EscapedPath())
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "", 5*time.Second)

	err := g.Send(context.Background(), "#ops", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", got.Text)
}

func TestGateway_SendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "channel archived", http.StatusGone)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "", 5*time.Second)

	err := g.Send(context.Background(), "#ops", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway API 410")
}

func TestGateway_NoAuthHeaderWhenTokenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "", 5*time.Second)
	_, err := g.Joined(context.Background(), "#ops")
	require.NoError(t, err)
}
