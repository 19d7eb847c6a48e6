package api

import (
	"fmt"
	"net/http"
)

func (a *API) sendMessage(w http.ResponseWriter, r *http.Request) {
	type request struct {
		To   string `json:"to" validate:"required,email"`
		Text string `json:"text" validate:"required"`
	}
	type response struct {
		Message Message `json:"message"`
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

	msg, err := a.DB.InsertMessage(r.Context(), Message{
		Sender:    acc.Email,
		Recipient: normalizeEmail(body.To),
		Text:      body.Text,
	})
	if err != nil {
		a.respondError(w, err, "Could not send message")
		return
	}

	a.notify(r.Context(), msg.Recipient, fmt.Sprintf("New message from %s", acc.Email))

	a.respond(w, http.StatusCreated, response{Message: msg})
}

func (a *API) listMessages(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Messages []Message `json:"messages"`
	}

	// An anonymous caller gets an empty inbox rather than an error.
	email := a.currentEmail(r)
	if email == "" {
		a.respond(w, http.StatusOK, response{Messages: []Message{}})
		return
	}

	msgs, err := a.DB.ListMessages(r.Context(), email, messagePageSize)
	if err != nil {
		a.respondError(w, err, "Could not list messages")
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}
	a.respond(w, http.StatusOK, response{Messages: msgs})
}
