package sentry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Issue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/issues/1/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","shortId":"DEMO-1","title":"Boom","permalink":"https://sentry.io/organizations/acme/issues/1/"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	issue, err := c.Issue(context.Background(), "1", "tok")
	require.NoError(t, err)
	assert.Equal(t, "1", issue.ID)
	assert.Equal(t, "Boom", issue.Title)
	assert.Equal(t, "https://sentry.io/organizations/acme/issues/1/", issue.Permalink)
}

func TestClient_Issue_NonOKStatus(t *testing.T) {
	// 4xx, 5xx and redirects-to-nowhere are all the same failure kind.
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := NewClient(srv.URL, 5*time.Second)
		issue, err := c.Issue(context.Background(), "42", "tok")
		assert.Error(t, err, "status %d", status)
		assert.Nil(t, issue)

		srv.Close()
	}
}

func TestClient_Issue_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Issue(context.Background(), "1", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_Issue_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately, so the connection is refused

	c := NewClient(srv.URL, time.Second)
	_, err := c.Issue(context.Background(), "1", "tok")
	assert.Error(t, err)
}

func TestClient_Issue_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 30*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Issue(ctx, "1", "tok")
	assert.Error(t, err)
}
