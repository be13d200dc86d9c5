package checkins

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/NordCoder/checkins/internal/domain/checkin"
	"github.com/NordCoder/checkins/internal/foursquare"
	"github.com/stretchr/testify/require"
)

// fakeAPI mimics the checkins endpoints of the Foursquare v2 API.
type fakeAPI struct {
	mu       sync.Mutex
	token    string
	checkins map[string]*checkin.Checkin
	recent   []checkin.Checkin
	replied  map[string]bool
	seq      int
	requests []*http.Request
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		token:    "secret",
		checkins: map[string]*checkin.Checkin{},
		replied:  map[string]bool{},
	}
}

func (f *fakeAPI) client(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	api, err := foursquare.New(foursquare.Config{BaseURL: srv.URL, Token: f.token}, foursquare.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return New(api, nil)
}

func (f *fakeAPI) seed(c checkin.Checkin) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkins[c.ID] = &c
}

func (f *fakeAPI) setToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAPI) stored(id string) (checkin.Checkin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.checkins[id]
	if !ok {
		return checkin.Checkin{}, false
	}
	return *c, true
}

func (f *fakeAPI) storedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checkins)
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)

	if r.URL.Query().Get("oauth_token") != f.token {
		f.fail(w, 401, "invalid_auth", "OAuth token invalid or revoked.")
		return
	}
	_ = r.ParseForm()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "checkins" {
		f.fail(w, 404, "endpoint_error", "no such endpoint")
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "add" && r.Method == http.MethodPost:
		f.seq++
		c := &checkin.Checkin{
			ID:        fmt.Sprintf("c%d", f.seq),
			CreatedAt: 1700000000 + int64(f.seq),
			Type:      "checkin",
			Shout:     r.PostForm.Get("shout"),
			Venue:     &checkin.Venue{ID: r.PostForm.Get("venueId"), Name: "Venue " + r.PostForm.Get("venueId")},
		}
		f.checkins[c.ID] = c
		f.ok(w, map[string]any{"checkin": c, "notifications": []any{}})
	case len(parts) == 2 && parts[1] == "recent" && r.Method == http.MethodGet:
		f.ok(w, map[string]any{"recent": f.recent})
	case len(parts) == 2 && r.Method == http.MethodGet:
		c, ok := f.checkins[parts[1]]
		if !ok {
			f.fail(w, 400, "param_error", fmt.Sprintf("Value %s is invalid for id", parts[1]))
			return
		}
		if sig := r.URL.Query().Get("signature"); r.URL.Query().Has("signature") && sig != "good-sig" {
			f.fail(w, 400, "param_error", "Invalid signature")
			return
		}
		f.ok(w, map[string]any{"checkin": c})
	case len(parts) == 3 && r.Method == http.MethodPost:
		c, ok := f.checkins[parts[1]]
		if !ok {
			f.fail(w, 400, "param_error", fmt.Sprintf("Value %s is invalid for id", parts[1]))
			return
		}
		f.action(w, r, c, parts[2])
	default:
		f.fail(w, 404, "endpoint_error", "no such endpoint")
	}
}

func (f *fakeAPI) action(w http.ResponseWriter, r *http.Request, c *checkin.Checkin, action string) {
	switch action {
	case "addcomment":
		f.seq++
		cm := checkin.CheckinComment{ID: fmt.Sprintf("cm%d", f.seq), CreatedAt: 1700000100, Text: r.PostForm.Get("text"), User: &checkin.User{ID: "self"}}
		c.Comments.Items = append(c.Comments.Items, cm)
		c.Comments.Count = len(c.Comments.Items)
		f.ok(w, map[string]any{"comment": cm})
	case "deletecomment":
		id := r.PostForm.Get("commentId")
		idx := -1
		for i, cm := range c.Comments.Items {
			if cm.ID == id {
				idx = i
			}
		}
		if idx < 0 {
			f.fail(w, 400, "param_error", "Comment not found")
			return
		}
		if c.Comments.Items[idx].User == nil || c.Comments.Items[idx].User.ID != "self" {
			f.fail(w, 403, "not_authorized", "You can only delete your own comments")
			return
		}
		c.Comments.Items = append(c.Comments.Items[:idx], c.Comments.Items[idx+1:]...)
		c.Comments.Count = len(c.Comments.Items)
		f.ok(w, map[string]any{"checkin": c})
	case "reply":
		if f.replied[c.ID] {
			f.fail(w, 403, "not_authorized", "Application has already replied to this checkin")
			return
		}
		f.replied[c.ID] = true
		f.seq++
		f.ok(w, map[string]any{"reply": map[string]any{"id": fmt.Sprintf("r%d", f.seq), "createdAt": 1700000200}})
	default:
		f.fail(w, 404, "endpoint_error", "no such endpoint")
	}
}

func (f *fakeAPI) ok(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"meta": map[string]any{"code": 200}, "response": resp})
}

func (f *fakeAPI) fail(w http.ResponseWriter, code int, typ, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"meta":     map[string]any{"code": code, "errorType": typ, "errorDetail": detail},
		"response": map[string]any{},
	})
}
