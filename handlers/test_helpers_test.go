package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"shouldcost/services"
	"shouldcost/testhelpers"
)

const (
	testTick        = 5 * time.Millisecond
	testRevealDelay = 10 * time.Millisecond
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.Request = req
	e.Response = rec
	return e
}

// newTestSession returns a session whose pages call the fake pricing API.
func newTestSession(t *testing.T, fake *testhelpers.FakePricingAPI) (*services.Session, *services.PricingClient) {
	t.Helper()

	client := services.NewPricingClient(fake.URL, 5*time.Second)
	registry := services.NewSessionRegistry(client, time.Hour, testTick, testRevealDelay)
	sess, _ := registry.Resolve("")
	t.Cleanup(sess.Bulk.Wait)
	return sess, client
}

// serve runs h against req carrying sess and returns the recorder.
func serve(t *testing.T, h func(*core.RequestEvent) error, req *http.Request, sess *services.Session) *httptest.ResponseRecorder {
	t.Helper()

	if sess != nil {
		req = WithSession(req, sess)
	}
	rec := httptest.NewRecorder()
	if err := h(newTestRequestEvent(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

// waitForState polls until the bulk page reaches want.
func waitForState(t *testing.T, sess *services.Session, want services.BulkState) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sess.Bulk.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("bulk page never reached %q, still %q", want, sess.Bulk.State())
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}
