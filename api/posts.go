package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

func (a *API) listPosts(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Posts []Post `json:"posts"`
	}

	// Get recent posts from cache, then fill from the DB excluding what
	// the cache already served. A cache read failure falls back to the
	// DB alone.
	posts, err := a.Cache.ListPosts(r.Context())
	if err != nil {
		a.Logger.Error("Could not read feed cache", "error", err.Error())
		posts = nil
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	dbPosts, err := a.DB.ListPosts(r.Context(), feedPageSize, 0, postIDs...)
	if err != nil {
		a.respondError(w, err, "Could not list posts")
		return
	}
	posts = append(posts, dbPosts...)

	// The DB fill can hold posts newer than the cached ones, for example
	// after a failed cache insert. Id order is creation order.
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })

	if viewer := a.currentEmail(r); viewer != "" && len(posts) > 0 {
		ids := make([]int64, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		mine, err := a.DB.ViewerReactions(r.Context(), viewer, ids)
		if err != nil {
			a.respondError(w, err, "Could not list posts")
			return
		}
		for i := range posts {
			posts[i].UserReaction = mine[posts[i].ID]
		}
	}

	if posts == nil {
		posts = []Post{}
	}
	a.respond(w, http.StatusOK, response{Posts: posts})
}

func (a *API) createPost(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Text    string `json:"text"`
		FileURL string `json:"file_url"`
	}
	type response struct {
		Post Post `json:"post"`
	}

	acc, err := a.currentAccount(r)
	if err != nil {
		a.respondError(w, err, "Login required")
		return
	}

	var body request
	if !a.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" && body.FileURL == "" {
		a.respondValidation(w, a.Val.Validate(body.Text, "required"))
		return
	}

	post, err := a.DB.InsertPost(r.Context(), Post{
		AuthorEmail: acc.Email,
		AuthorName:  acc.Name,
		ProfilePic:  acc.ProfilePic,
		Text:        body.Text,
		FileURL:     body.FileURL,
		Reactions:   map[string]int{},
	})
	if err != nil {
		a.respondError(w, err, "Could not create post")
		return
	}

	if err := a.Cache.InsertPost(r.Context(), post); err != nil {
		a.Logger.Error("Could not cache post", "error", err.Error())
	}

	a.respond(w, http.StatusCreated, response{Post: post})
}

func (a *API) deletePost(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Success bool `json:"success"`
	}

	acc, err := a.currentAccount(r)
	if err != nil {
		a.respondError(w, err, "Login required")
		return
	}

	postID, err := strconv.ParseInt(r.PathValue("postID"), 10, 64)
	if err != nil {
		a.respondError(w, ErrNotFound, "No such post")
		return
	}

	post, err := a.DB.GetPost(r.Context(), postID)
	if err != nil {
		a.respondError(w, err, "No such post")
		return
	}
	if post.AuthorEmail != acc.Email {
		a.respondError(w, ErrForbidden, "Only the author can delete a post")
		return
	}

	if err := a.DB.DeletePost(r.Context(), postID); err != nil {
		a.respondError(w, err, "Could not delete post")
		return
	}
	if err := a.Cache.RemovePost(r.Context(), postID); err != nil {
		a.Logger.Error("Could not evict post from cache", "post_id", postID, "error", err.Error())
	}

	a.respond(w, http.StatusOK, response{Success: true})
}

func (a *API) react(w http.ResponseWriter, r *http.Request) {
	type request struct {
		PostID int64  `json:"post_id" validate:"required"`
		Emoji  string `json:"emoji" validate:"required"`
	}
	type response struct {
		Reactions    map[string]int `json:"reactions"`
		UserReaction string         `json:"user_reaction"`
	}

	acc, err := a.currentAccount(r)
	if err != nil {
		a.respondError(w, err, "Login required")
		return
	}

	var body request
	if !a.decode(w, r, &body) {
		return
	}
	if valid := a.validateBody(w, &body); !valid {
		return
	}

	post, err := a.DB.ToggleReaction(r.Context(), acc.Email, body.PostID, body.Emoji)
	if err != nil {
		a.respondError(w, err, "Could not apply reaction")
		return
	}

	// Notification and cache refresh ride outside the reaction's atomic
	// unit; both are best effort.
	if post.AuthorEmail != acc.Email {
		a.notify(r.Context(), post.AuthorEmail, fmt.Sprintf("%s reaction on your post", body.Emoji))
	}
	if err := a.Cache.UpdateReactions(r.Context(), post.ID, post.Reactions); err != nil {
		a.Logger.Error("Could not update cached reactions", "post_id", post.ID, "error", err.Error())
	}

	a.respond(w, http.StatusOK, response{
		Reactions:    post.Reactions,
		UserReaction: post.UserReaction,
	})
}
