package api

import (
	"fmt"
	"net/http"
)

func (a *API) follow(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Target string `json:"target" validate:"required,email"`
	}
	type response struct {
		Following bool `json:"following"`
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

	target := normalizeEmail(body.Target)
	if target == acc.Email {
		a.respondError(w, ErrSelfFollow, "You cannot follow yourself")
		return
	}

	following, err := a.DB.ToggleFollow(r.Context(), acc.Email, target)
	if err != nil {
		a.respondError(w, err, "Could not toggle follow")
		return
	}
	if following {
		a.notify(r.Context(), target, fmt.Sprintf("%s followed you", acc.Email))
	}

	a.respond(w, http.StatusOK, response{Following: following})
}

func (a *API) isFollowing(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Following bool `json:"following"`
	}

	acc, err := a.currentAccount(r)
	if err != nil {
		a.respondError(w, err, "Login required")
		return
	}

	target := normalizeEmail(r.PathValue("target"))
	following, err := a.DB.IsFollowing(r.Context(), acc.Email, target)
	if err != nil {
		a.respondError(w, err, "Could not check follow state")
		return
	}
	a.respond(w, http.StatusOK, response{Following: following})
}
