package api

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAPI_instrumentUsesRoutePattern(t *testing.T) {
	db := &testdb{
		getAccount: func(t *testing.T, email string) (Account, error) {
			return Account{Email: "bob@x.com"}, nil
		},
		isFollowing: func(t *testing.T, follower, target string) (bool, error) {
			return false, nil
		},
	}
	srv := newTestServer(t, db, &testcache{}, sessionFor("bob@x.com"))
	defer srv.Close()

	// The registry is process-global, so assert on the delta.
	pattern := "GET /api/follow/{target}"
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", pattern, "200"))

	for _, target := range []string{"alice@x.com", "carol@x.com"} {
		req, _ := http.NewRequest("GET", srv.URL+"/api/follow/"+target, nil)
		addSession(req, "tok")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		checkStatus(t, resp.StatusCode, 200)
	}

	got := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", pattern, "200")) - before
	if got != 2 {
		t.Errorf("Got %v requests counted under %q, want 2", got, pattern)
	}
	for _, target := range []string{"alice@x.com", "carol@x.com"} {
		raw := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "/api/follow/"+target, "200"))
		if raw != 0 {
			t.Errorf("Got a per-URL series for %q, want aggregation under the route pattern", target)
		}
	}
}
