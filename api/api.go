package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/vibenet/backend/api/validator"
)

// A DB provides the persistent storage layer. Implementations own the
// atomicity of the toggle operations: ToggleReaction and ToggleFollow are
// read-modify-write sequences and must be serialized per key.
type DB interface {
	// Accounts. Emails are normalized by the caller before they reach
	// the store.
	InsertAccount(ctx context.Context, acc Account) (Account, error)
	GetAccount(ctx context.Context, email string) (Account, error)
	UpdateBio(ctx context.Context, email, bio string) error

	// Posts and reactions.
	ListPosts(ctx context.Context, limit, offset int, excludePostIDs ...int64) ([]Post, error)
	ListPostsByAuthor(ctx context.Context, email string) ([]Post, error)
	GetPost(ctx context.Context, id int64) (Post, error)
	InsertPost(ctx context.Context, p Post) (Post, error)
	DeletePost(ctx context.Context, id int64) error
	// ToggleReaction applies the reaction policy for one account on one
	// post and returns the post with refreshed counts and the account's
	// resulting reaction.
	ToggleReaction(ctx context.Context, email string, postID int64, emoji string) (Post, error)
	// ViewerReactions returns the viewer's current emoji per post id for
	// the given posts; posts without a reaction are absent from the map.
	ViewerReactions(ctx context.Context, email string, postIDs []int64) (map[int64]string, error)

	// Follow graph.
	ToggleFollow(ctx context.Context, follower, target string) (bool, error)
	IsFollowing(ctx context.Context, follower, target string) (bool, error)
	FollowerCount(ctx context.Context, target string) (int, error)

	// Notifications. InsertNotification silently drops unknown targets.
	InsertNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, email string, limit int) ([]Notification, error)

	// Messages.
	InsertMessage(ctx context.Context, m Message) (Message, error)
	ListMessages(ctx context.Context, email string, limit int) ([]Message, error)

	// Monetization.
	InsertAd(ctx context.Context, ad Ad) (Ad, error)
	ListAds(ctx context.Context) ([]Ad, error)
	RecordWatch(ctx context.Context, authorEmail string) error
	// CreditImpression picks one ad with budget > cost, charges it and
	// credits the author. Returns false without error when no ad is
	// eligible.
	CreditImpression(ctx context.Context, authorEmail string, cost, credit float64) (bool, error)
}

// A Cache provides a storage layer that caches the most recent feed posts.
// Cache failures are logged and never fail the triggering request.
type Cache interface {
	ListPosts(ctx context.Context) ([]Post, error)
	InsertPost(ctx context.Context, p Post) error
	UpdateReactions(ctx context.Context, postID int64, reactions map[string]int) error
	RemovePost(ctx context.Context, postID int64) error
}

// Sessions binds opaque tokens to account emails for the lifetime of a
// login. Lookup returns an empty email for unknown or expired tokens.
type Sessions interface {
	Create(ctx context.Context, email string) (string, error)
	Lookup(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

// An Uploader stores a media blob and returns a publicly retrievable URL.
// The API never interprets the bytes.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Config carries the tunable business constants. Zero values are replaced
// with the defaults below on first use.
type Config struct {
	EligibleFollowers  int
	EligibleWatchHours int64
	ImpressionCost     float64
	AuthorCredit       float64
	SessionCookie      string
	SessionTTL         time.Duration
	CookieSecure       bool
	MaxUploadBytes     int64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		EligibleFollowers:  5000,
		EligibleWatchHours: 1_000_000,
		ImpressionCost:     0.01,
		AuthorCredit:       0.005,
		SessionCookie:      "vibenet_session",
		SessionTTL:         24 * time.Hour,
		MaxUploadBytes:     30 << 20,
	}
}

// API provides the REST endpoints for the application.
type API struct {
	Logger   *slog.Logger
	DB       DB
	Cache    Cache
	Sessions Sessions
	Uploader Uploader
	Val      *validator.Validator
	Config   Config

	once    sync.Once
	handler http.Handler
}

// Page sizes per surface.
var (
	feedPageSize         = 20
	notificationPageSize = 20
	messagePageSize      = 50
)

func (a *API) setup() {
	def := DefaultConfig()
	if a.Config.EligibleFollowers == 0 {
		a.Config.EligibleFollowers = def.EligibleFollowers
	}
	if a.Config.EligibleWatchHours == 0 {
		a.Config.EligibleWatchHours = def.EligibleWatchHours
	}
	if a.Config.ImpressionCost == 0 {
		a.Config.ImpressionCost = def.ImpressionCost
	}
	if a.Config.AuthorCredit == 0 {
		a.Config.AuthorCredit = def.AuthorCredit
	}
	if a.Config.SessionCookie == "" {
		a.Config.SessionCookie = def.SessionCookie
	}
	if a.Config.SessionTTL == 0 {
		a.Config.SessionTTL = def.SessionTTL
	}
	if a.Config.MaxUploadBytes == 0 {
		a.Config.MaxUploadBytes = def.MaxUploadBytes
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/signup", a.signup)
	mux.HandleFunc("POST /api/login", a.login)
	mux.HandleFunc("POST /api/logout", a.logout)
	mux.HandleFunc("GET /api/me", a.me)
	mux.HandleFunc("GET /api/profile/{email}", a.profile)
	mux.HandleFunc("POST /api/update_bio", a.updateBio)

	mux.HandleFunc("GET /api/posts", a.listPosts)
	mux.HandleFunc("POST /api/posts", a.createPost)
	mux.HandleFunc("DELETE /api/posts/{postID}", a.deletePost)
	mux.HandleFunc("POST /api/react", a.react)

	mux.HandleFunc("POST /api/follow", a.follow)
	mux.HandleFunc("GET /api/follow/{target}", a.isFollowing)

	mux.HandleFunc("GET /api/messages", a.listMessages)
	mux.HandleFunc("POST /api/messages", a.sendMessage)
	mux.HandleFunc("GET /api/notifications", a.listNotifications)

	mux.HandleFunc("POST /api/watch", a.recordWatch)
	mux.HandleFunc("POST /api/impression", a.recordImpression)
	mux.HandleFunc("GET /api/monetization", a.monetization)
	mux.HandleFunc("GET /api/ads", a.listAds)
	mux.HandleFunc("POST /api/ads", a.createAd)

	mux.HandleFunc("POST /api/upload", a.upload)
	mux.HandleFunc("GET /_health", a.health)

	a.handler = a.instrument(mux)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setup)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	a.handler.ServeHTTP(w, r)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// respondError maps err onto the wire taxonomy. msg is the caller-facing
// message; the underlying error only goes to the log.
func (a *API) respondError(w http.ResponseWriter, err error, msg string) {
	kind, status := errKind(err)
	a.Logger.Error("Error", "kind", kind, "error", err.Error())
	a.respond(w, status, errorResponse{Kind: kind, Error: msg})
}

func (a *API) respondValidation(w http.ResponseWriter, errs []validator.ValidationError) {
	type response struct {
		Kind   string                      `json:"kind"`
		Errors []validator.ValidationError `json:"errors"`
	}
	a.respond(w, http.StatusBadRequest, response{Kind: kindValidation, Errors: errs})
}

// validateBody validates s and writes the failure response itself. Returns
// true when the body is valid.
func (a *API) validateBody(w http.ResponseWriter, s any) bool {
	errs := a.Val.ValidateStruct(s)
	if len(errs) > 0 {
		a.respondValidation(w, errs)
		return false
	}
	return true
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, body any) bool {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.respond(w, http.StatusBadRequest, errorResponse{Kind: "bad_request", Error: "Could not decode request body"})
		return false
	}
	if err := r.Body.Close(); err != nil {
		a.respondError(w, err, "Could not close request body")
		return false
	}
	return true
}

// bindSession creates a session for email and sets the cookie on the
// response.
func (a *API) bindSession(ctx context.Context, w http.ResponseWriter, email string) error {
	token, err := a.Sessions.Create(ctx, email)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.Config.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.Config.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (a *API) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.Config.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentEmail resolves the caller's identity, empty when anonymous.
// Session store failures are treated as anonymous rather than failing the
// request.
func (a *API) currentEmail(r *http.Request) string {
	c, err := r.Cookie(a.Config.SessionCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	email, err := a.Sessions.Lookup(r.Context(), c.Value)
	if err != nil {
		a.Logger.Error("Could not look up session", "error", err.Error())
		return ""
	}
	return email
}

// currentAccount resolves the caller to a full account, returning
// ErrUnauthenticated when no identity is bound.
func (a *API) currentAccount(r *http.Request) (Account, error) {
	email := a.currentEmail(r)
	if email == "" {
		return Account{}, ErrUnauthenticated
	}
	acc, err := a.DB.GetAccount(r.Context(), email)
	if errors.Is(err, ErrNotFound) {
		return Account{}, ErrUnauthenticated
	}
	return acc, err
}

// notify appends a notification to target, best effort. Failures are
// logged and never surfaced to the caller.
func (a *API) notify(ctx context.Context, target, text string) {
	if err := a.DB.InsertNotification(ctx, Notification{Account: target, Text: text}); err != nil {
		a.Logger.Error("Could not append notification", "target", target, "error", err.Error())
	}
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
