package api

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestAPI_createPost(t *testing.T) {
	alice := Account{Email: "alice@x.com", Name: "Alice", ProfilePic: "http://cdn/alice.png"}

	tests := []struct {
		name       string
		db         *testdb
		cookie     string
		sessions   *testsessions
		req        string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Unauthenticated",
			db:         &testdb{},
			req:        `{"text": "hello"}`,
			wantStatus: 401,
			wantBody: `{
				"kind": "unauthenticated",
				"error": "Login required"
			}`,
		},
		{
			name:     "BlankPost",
			cookie:   "tok",
			sessions: sessionFor("alice@x.com"),
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return alice, nil
				},
			},
			req:        `{"text": "   "}`,
			wantStatus: 400,
		},
		{
			name:     "SnapshotsAuthor",
			cookie:   "tok",
			sessions: sessionFor("alice@x.com"),
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return alice, nil
				},
				insertPost: func(t *testing.T, p Post) (Post, error) {
					if p.AuthorEmail != "alice@x.com" {
						t.Errorf("Got author %q, want alice@x.com", p.AuthorEmail)
					}
					if p.AuthorName != "Alice" || p.ProfilePic != "http://cdn/alice.png" {
						t.Error("Author display fields were not snapshotted")
					}
					p.ID = 1
					p.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
					return p, nil
				},
			},
			req:        `{"text": "hello"}`,
			wantStatus: 201,
			wantBody: `{
				"post": {
					"id": 1,
					"author_email": "alice@x.com",
					"author_name": "Alice",
					"profile_pic": "http://cdn/alice.png",
					"text": "hello",
					"timestamp": "2024-01-01T00:00:00Z",
					"reactions": {}
				}
			}`,
		},
		{
			name:     "MediaOnly",
			cookie:   "tok",
			sessions: sessionFor("alice@x.com"),
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return alice, nil
				},
				insertPost: func(t *testing.T, p Post) (Post, error) {
					if p.FileURL != "http://cdn/cat.mp4" {
						t.Errorf("Got file URL %q", p.FileURL)
					}
					p.ID = 2
					p.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
					return p, nil
				},
			},
			req:        `{"text": "", "file_url": "http://cdn/cat.mp4"}`,
			wantStatus: 201,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.db, &testcache{}, tt.sessions)
			defer srv.Close()

			req, _ := http.NewRequest("POST", srv.URL+"/api/posts", strings.NewReader(tt.req))
			addSession(req, tt.cookie)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			checkStatus(t, resp.StatusCode, tt.wantStatus)
			if tt.wantBody != "" {
				checkBody(t, resp, tt.wantBody)
			}
		})
	}
}

func TestAPI_deletePost(t *testing.T) {
	alicePost := Post{ID: 1, AuthorEmail: "alice@x.com", AuthorName: "Alice"}

	tests := []struct {
		name        string
		db          *testdb
		cache       *testcache
		cookie      string
		sessions    *testsessions
		postID      string
		wantStatus  int
		wantBody    string
		wantEvicted bool
	}{
		{
			name:       "NotFound",
			cookie:     "tok",
			sessions:   sessionFor("alice@x.com"),
			postID:     "99",
			wantStatus: 404,
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return Account{Email: "alice@x.com"}, nil
				},
				getPost: func(t *testing.T, id int64) (Post, error) {
					return Post{}, ErrNotFound
				},
			},
			wantBody: `{
				"kind": "not_found",
				"error": "No such post"
			}`,
		},
		{
			name:       "Forbidden",
			cookie:     "tok",
			sessions:   sessionFor("bob@x.com"),
			postID:     "1",
			wantStatus: 403,
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return Account{Email: "bob@x.com"}, nil
				},
				getPost: func(t *testing.T, id int64) (Post, error) {
					return alicePost, nil
				},
			},
			wantBody: `{
				"kind": "forbidden",
				"error": "Only the author can delete a post"
			}`,
		},
		{
			name:       "OK",
			cookie:     "tok",
			sessions:   sessionFor("alice@x.com"),
			postID:     "1",
			wantStatus: 200,
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return Account{Email: "alice@x.com"}, nil
				},
				getPost: func(t *testing.T, id int64) (Post, error) {
					return alicePost, nil
				},
				deletePost: func(t *testing.T, id int64) error {
					if id != 1 {
						t.Errorf("Got id %d, want 1", id)
					}
					return nil
				},
			},
			wantBody:    `{"success": true}`,
			wantEvicted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evicted := false
			cache := &testcache{
				removePost: func(t *testing.T, postID int64) error {
					evicted = true
					return nil
				},
			}
			srv := newTestServer(t, tt.db, cache, tt.sessions)
			defer srv.Close()

			req, _ := http.NewRequest("DELETE", srv.URL+"/api/posts/"+tt.postID, nil)
			addSession(req, tt.cookie)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			checkStatus(t, resp.StatusCode, tt.wantStatus)
			checkBody(t, resp, tt.wantBody)
			if evicted != tt.wantEvicted {
				t.Errorf("Got cache eviction %v, want %v", evicted, tt.wantEvicted)
			}
		})
	}
}

func TestAPI_react(t *testing.T) {
	tests := []struct {
		name         string
		db           *testdb
		cookie       string
		sessions     *testsessions
		req          string
		wantStatus   int
		wantBody     string
		wantNotified string
	}{
		{
			name:       "Unauthenticated",
			db:         &testdb{},
			req:        `{"post_id": 1, "emoji": "👍"}`,
			wantStatus: 401,
			wantBody: `{
				"kind": "unauthenticated",
				"error": "Login required"
			}`,
		},
		{
			name:     "PostNotFound",
			cookie:   "tok",
			sessions: sessionFor("bob@x.com"),
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return Account{Email: "bob@x.com"}, nil
				},
				toggleReaction: func(t *testing.T, email string, postID int64, emoji string) (Post, error) {
					return Post{}, ErrNotFound
				},
			},
			req:        `{"post_id": 99, "emoji": "👍"}`,
			wantStatus: 404,
			wantBody: `{
				"kind": "not_found",
				"error": "Could not apply reaction"
			}`,
		},
		{
			name:     "NotifiesAuthor",
			cookie:   "tok",
			sessions: sessionFor("bob@x.com"),
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return Account{Email: "bob@x.com"}, nil
				},
				toggleReaction: func(t *testing.T, email string, postID int64, emoji string) (Post, error) {
					if email != "bob@x.com" || postID != 1 || emoji != "👍" {
						t.Errorf("Got toggle (%q, %d, %q)", email, postID, emoji)
					}
					return Post{
						ID:           1,
						AuthorEmail:  "alice@x.com",
						Reactions:    map[string]int{"👍": 1},
						UserReaction: "👍",
					}, nil
				},
			},
			req:          `{"post_id": 1, "emoji": "👍"}`,
			wantStatus:   200,
			wantNotified: "alice@x.com",
			wantBody: `{
				"reactions": {"👍": 1},
				"user_reaction": "👍"
			}`,
		},
		{
			name:     "SwitchEmoji",
			cookie:   "tok",
			sessions: sessionFor("bob@x.com"),
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return Account{Email: "bob@x.com"}, nil
				},
				toggleReaction: func(t *testing.T, email string, postID int64, emoji string) (Post, error) {
					return Post{
						ID:           1,
						AuthorEmail:  "alice@x.com",
						Reactions:    map[string]int{"👍": 0, "❤️": 1},
						UserReaction: "❤️",
					}, nil
				},
			},
			req:          `{"post_id": 1, "emoji": "❤️"}`,
			wantStatus:   200,
			wantNotified: "alice@x.com",
			wantBody: `{
				"reactions": {"❤️": 1, "👍": 0},
				"user_reaction": "❤️"
			}`,
		},
		{
			name:     "OwnPostNoNotification",
			cookie:   "tok",
			sessions: sessionFor("alice@x.com"),
			db: &testdb{
				getAccount: func(t *testing.T, email string) (Account, error) {
					return Account{Email: "alice@x.com"}, nil
				},
				toggleReaction: func(t *testing.T, email string, postID int64, emoji string) (Post, error) {
					return Post{
						ID:           1,
						AuthorEmail:  "alice@x.com",
						Reactions:    map[string]int{"👍": 1},
						UserReaction: "👍",
					}, nil
				},
			},
			req:        `{"post_id": 1, "emoji": "👍"}`,
			wantStatus: 200,
			wantBody: `{
				"reactions": {"👍": 1},
				"user_reaction": "👍"
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notified := ""
			tt.db.insertNotification = func(t *testing.T, n Notification) error {
				notified = n.Account
				return nil
			}
			srv := newTestServer(t, tt.db, &testcache{}, tt.sessions)
			defer srv.Close()

			req, _ := http.NewRequest("POST", srv.URL+"/api/react", strings.NewReader(tt.req))
			addSession(req, tt.cookie)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			checkStatus(t, resp.StatusCode, tt.wantStatus)
			checkBody(t, resp, tt.wantBody)
			if notified != tt.wantNotified {
				t.Errorf("Got notification target %q, want %q", notified, tt.wantNotified)
			}
		})
	}
}
