package api

import "net/http"

func (a *API) listNotifications(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Notifications []Notification `json:"notifications"`
	}

	acc, err := a.currentAccount(r)
	if err != nil {
		a.respondError(w, err, "Login required")
		return
	}

	nots, err := a.DB.ListNotifications(r.Context(), acc.Email, notificationPageSize)
	if err != nil {
		a.respondError(w, err, "Could not list notifications")
		return
	}
	if nots == nil {
		nots = []Notification{}
	}
	a.respond(w, http.StatusOK, response{Notifications: nots})
}
