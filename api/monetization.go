package api

import "net/http"

// Eligibility statuses reported by the monetization endpoint.
const (
	StatusEligible    = "Eligible"
	StatusNotEligible = "Not Eligible"
)

func (a *API) recordWatch(w http.ResponseWriter, r *http.Request) {
	type request struct {
		PostID int64 `json:"post_id" validate:"required"`
	}
	type response struct {
		Success bool `json:"success"`
	}

	var body request
	if !a.decode(w, r, &body) {
		return
	}
	if valid := a.validateBody(w, &body); !valid {
		return
	}

	post, err := a.DB.GetPost(r.Context(), body.PostID)
	if err != nil {
		a.respondError(w, err, "No such post")
		return
	}

	// One completed playback is one watch unit. Self-views do not accrue.
	viewer := a.currentEmail(r)
	if post.AuthorEmail != viewer {
		if err := a.DB.RecordWatch(r.Context(), post.AuthorEmail); err != nil {
			a.respondError(w, err, "Could not record watch")
			return
		}
	}

	a.respond(w, http.StatusOK, response{Success: true})
}

func (a *API) recordImpression(w http.ResponseWriter, r *http.Request) {
	type request struct {
		PostID int64 `json:"post_id" validate:"required"`
	}
	type response struct {
		Credited bool `json:"credited"`
	}

	var body request
	if !a.decode(w, r, &body) {
		return
	}
	if valid := a.validateBody(w, &body); !valid {
		return
	}

	post, err := a.DB.GetPost(r.Context(), body.PostID)
	if err != nil {
		a.respondError(w, err, "No such post")
		return
	}

	credited, err := a.DB.CreditImpression(r.Context(), post.AuthorEmail, a.Config.ImpressionCost, a.Config.AuthorCredit)
	if err != nil {
		a.respondError(w, err, "Could not credit impression")
		return
	}

	a.respond(w, http.StatusOK, response{Credited: credited})
}

func (a *API) monetization(w http.ResponseWriter, r *http.Request) {
	acc, err := a.currentAccount(r)
	if err != nil {
		a.respondError(w, err, "Login required")
		return
	}

	followers, err := a.DB.FollowerCount(r.Context(), acc.Email)
	if err != nil {
		a.respondError(w, err, "Could not count followers")
		return
	}

	status := StatusNotEligible
	if followers >= a.Config.EligibleFollowers && acc.WatchHours >= a.Config.EligibleWatchHours {
		status = StatusEligible
	}

	a.respond(w, http.StatusOK, MonetizationStats{
		Followers:  followers,
		WatchHours: acc.WatchHours,
		Earnings:   acc.Earnings,
		Status:     status,
	})
}

func (a *API) createAd(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Title  string  `json:"title" validate:"required"`
		Budget float64 `json:"budget" validate:"required,gt=0"`
	}
	type response struct {
		Ad Ad `json:"ad"`
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

	ad, err := a.DB.InsertAd(r.Context(), Ad{
		OwnerEmail: acc.Email,
		Title:      body.Title,
		Budget:     body.Budget,
	})
	if err != nil {
		a.respondError(w, err, "Could not create ad")
		return
	}

	a.respond(w, http.StatusCreated, response{Ad: ad})
}

func (a *API) listAds(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Ads []Ad `json:"ads"`
	}

	ads, err := a.DB.ListAds(r.Context())
	if err != nil {
		a.respondError(w, err, "Could not list ads")
		return
	}
	if ads == nil {
		ads = []Ad{}
	}
	a.respond(w, http.StatusOK, response{Ads: ads})
}
