package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/obs/retry"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry_ReplaceSnapshotExclude(t *testing.T) {
	r := New()
	r.Replace([]provider.Provider{{ID: "a"}, {ID: "b"}, {ID: "c"}}, []provider.User{{ID: "u1", Name: "bob"}})

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	snap[0].ID = "mutated"
	require.Equal(t, "a", r.Snapshot()[0].ID, "snapshot must be a copy")

	r.Exclude("b")
	ids := []string{}
	for _, p := range r.Snapshot() {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []string{"a", "c"}, ids)
	require.Len(t, snap, 3, "earlier snapshot unaffected by exclusion")

	u, ok := r.User("u1")
	require.True(t, ok)
	require.Equal(t, "bob", u.Name)

	r.Replace([]provider.Provider{{ID: "b"}}, nil)
	require.Len(t, r.Snapshot(), 1)
	_, ok = r.User("u1")
	require.False(t, ok)
}

func TestFilter(t *testing.T) {
	in := []provider.Provider{
		{ID: "1", Status: "staked", Zone: "AS"},
		{ID: "2", Status: "verified", Zone: "AS"},
		{ID: "3", Status: "Staked", Zone: "EU"},
	}
	require.Len(t, Filter(in, "staked", ""), 2)
	out := Filter(in, "staked", "as")
	require.Len(t, out, 1)
	require.Equal(t, "1", out[0].ID)
	require.Len(t, Filter(in, "", ""), 3)
}

func TestHTTPDirectory_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/nodes", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "portal-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"n1","user_id":"u1","blockchain":"eth","network":"mainnet","ip":"1.1.1.1","status":"staked","component_type":"gateway"}]`))
	})
	mux.HandleFunc("/gateways", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"g1","blockchain":"eth","network":"mainnet","ip":"2.2.2.2","status":"staked"}]`))
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"u1","name":"alice","email":"a@x.io","verified":true}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d := NewHTTPDirectory(srv.Client(), DirectoryConfig{
		NodesURL:    srv.URL + "/nodes",
		GatewaysURL: srv.URL + "/gateways",
		UsersURL:    srv.URL + "/users",
		Token:       "portal-token",
	})
	providers, users, err := d.Fetch(t.Context())
	require.NoError(t, err)
	require.Len(t, providers, 2)
	require.Equal(t, provider.Node, providers[0].ComponentType)
	require.Equal(t, provider.Gateway, providers[1].ComponentType)
	require.Len(t, users, 1)
	require.True(t, users[0].Verified)
}

func TestHTTPDirectory_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, _, err := NewHTTPDirectory(srv.Client(), DirectoryConfig{NodesURL: srv.URL}).Fetch(t.Context())
	require.Error(t, err)
}

type flakyDirectory struct {
	calls atomic.Int32
	fail  int32
}

func (f *flakyDirectory) Fetch(context.Context) ([]provider.Provider, []provider.User, error) {
	if f.calls.Add(1) <= f.fail {
		return nil, nil, errors.New("portal down")
	}
	return []provider.Provider{
		{ID: "a", Status: "staked"},
		{ID: "b", Status: "unstaked"},
	}, nil, nil
}

func TestRefresher_RetriesAndFilters(t *testing.T) {
	dir := &flakyDirectory{fail: 1}
	reg := New()
	reg.Replace([]provider.Provider{{ID: "old"}}, nil)

	r := &Refresher{
		Log:       zap.NewNop(),
		Directory: dir,
		Registry:  reg,
		Status:    "staked",
		Policy:    retry.Policy{Name: "test_directory", Attempts: 3, Backoff: retry.ExpoJitter{Base: time.Millisecond}},
	}
	require.NoError(t, r.Refresh(t.Context()))
	require.EqualValues(t, 2, dir.calls.Load())

	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, "a", snap[0].ID)
}

func TestRefresher_KeepsSnapshotOnFailure(t *testing.T) {
	reg := New()
	reg.Replace([]provider.Provider{{ID: "old"}}, nil)
	r := &Refresher{
		Log:       zap.NewNop(),
		Directory: &flakyDirectory{fail: 10},
		Registry:  reg,
		Policy:    retry.Policy{Name: "test_directory_fail", Attempts: 2, Backoff: retry.ExpoJitter{Base: time.Millisecond}},
	}
	require.Error(t, r.Refresh(t.Context()))
	require.Equal(t, "old", reg.Snapshot()[0].ID)
}
