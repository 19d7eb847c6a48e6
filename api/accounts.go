package api

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// normalizeEmail trims and lowercases so two accounts can never differ only
// by case or surrounding whitespace.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *API) signup(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name       string `json:"name" validate:"required"`
		Email      string `json:"email" validate:"required,email"`
		Password   string `json:"password" validate:"required,min=6"`
		ProfilePic string `json:"profile_pic"`
	}
	type response struct {
		User Account `json:"user"`
	}

	var body request
	if !a.decode(w, r, &body) {
		return
	}
	body.Email = normalizeEmail(body.Email)
	if valid := a.validateBody(w, &body); !valid {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		a.respondError(w, err, "Could not hash password")
		return
	}

	acc, err := a.DB.InsertAccount(r.Context(), Account{
		Email:        body.Email,
		Name:         body.Name,
		PasswordHash: string(hash),
		ProfilePic:   body.ProfilePic,
	})
	if err != nil {
		a.respondError(w, err, "Could not create account")
		return
	}

	if err := a.bindSession(r.Context(), w, acc.Email); err != nil {
		a.respondError(w, err, "Could not create session")
		return
	}

	a.respond(w, http.StatusCreated, response{User: acc})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		User Account `json:"user"`
	}

	var body request
	if !a.decode(w, r, &body) {
		return
	}
	if valid := a.validateBody(w, &body); !valid {
		return
	}

	email := normalizeEmail(body.Email)
	acc, err := a.DB.GetAccount(r.Context(), email)
	if errors.Is(err, ErrNotFound) {
		// Same rejection as a bad password so callers cannot probe for
		// registered emails.
		a.respondError(w, ErrInvalidCredential, "Invalid credentials")
		return
	}
	if err != nil {
		a.respondError(w, err, "Could not look up account")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(body.Password)); err != nil {
		a.respondError(w, ErrInvalidCredential, "Invalid credentials")
		return
	}

	if err := a.bindSession(r.Context(), w, acc.Email); err != nil {
		a.respondError(w, err, "Could not create session")
		return
	}

	a.respond(w, http.StatusOK, response{User: acc})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Success bool `json:"success"`
	}

	if c, err := r.Cookie(a.Config.SessionCookie); err == nil && c.Value != "" {
		if err := a.Sessions.Destroy(r.Context(), c.Value); err != nil {
			a.Logger.Error("Could not destroy session", "error", err.Error())
		}
	}
	a.clearSession(w)
	a.respond(w, http.StatusOK, response{Success: true})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	type response struct {
		User *Account `json:"user"`
	}

	email := a.currentEmail(r)
	if email == "" {
		a.respond(w, http.StatusOK, response{User: nil})
		return
	}
	acc, err := a.DB.GetAccount(r.Context(), email)
	if errors.Is(err, ErrNotFound) {
		// Session points at an account that no longer resolves.
		a.clearSession(w)
		a.respond(w, http.StatusOK, response{User: nil})
		return
	}
	if err != nil {
		a.respondError(w, err, "Could not look up account")
		return
	}
	a.respond(w, http.StatusOK, response{User: &acc})
}

func (a *API) profile(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Bio   string `json:"bio"`
		Posts []Post `json:"posts"`
	}

	email := normalizeEmail(r.PathValue("email"))
	acc, err := a.DB.GetAccount(r.Context(), email)
	if err != nil {
		a.respondError(w, err, "Could not look up account")
		return
	}
	posts, err := a.DB.ListPostsByAuthor(r.Context(), acc.Email)
	if err != nil {
		a.respondError(w, err, "Could not list posts")
		return
	}
	if posts == nil {
		posts = []Post{}
	}
	a.respond(w, http.StatusOK, response{Bio: acc.Bio, Posts: posts})
}

func (a *API) updateBio(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Bio string `json:"bio"`
	}
	type response struct {
		Success bool `json:"success"`
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

	if err := a.DB.UpdateBio(r.Context(), acc.Email, body.Bio); err != nil {
		a.respondError(w, err, "Could not update bio")
		return
	}
	a.respond(w, http.StatusOK, response{Success: true})
}
