package api

import "time"

// An Account represents a registered user. The credential hash stays inside
// the storage boundary and is never serialized.
type Account struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	PasswordHash string  `json:"-"`
	ProfilePic   string  `json:"profile_pic"`
	Bio          string  `json:"bio"`
	WatchHours   int64   `json:"watch_hours"`
	Earnings     float64 `json:"earnings"`
}

// A Post represents a feed post. The author display fields are snapshotted
// at creation time and are not kept in sync with later profile edits.
type Post struct {
	ID          int64          `json:"id"`
	AuthorEmail string         `json:"author_email"`
	AuthorName  string         `json:"author_name"`
	ProfilePic  string         `json:"profile_pic"`
	Text        string         `json:"text"`
	FileURL     string         `json:"file_url,omitempty"`
	CreatedAt   time.Time      `json:"timestamp"`
	Reactions   map[string]int `json:"reactions"`

	// UserReaction is the viewing account's own emoji on this post, empty
	// when the viewer has none or is anonymous.
	UserReaction string `json:"user_reaction,omitempty"`
}

// A Message is a direct message between two accounts. Append-only.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"from"`
	Recipient string    `json:"to"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
}

// A Notification is a best-effort note appended to an account's inbox when
// someone reacts, follows or messages them.
type Notification struct {
	ID        int64     `json:"id"`
	Account   string    `json:"-"`
	Text      string    `json:"text"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"timestamp"`
}

// An Ad holds a promoter's remaining budget and impression counter. The
// budget only ever decreases, one unit cost per credited impression.
type Ad struct {
	ID          int64   `json:"id"`
	OwnerEmail  string  `json:"owner_email"`
	Title       string  `json:"title"`
	Budget      float64 `json:"budget"`
	Impressions int64   `json:"impressions"`
}

// MonetizationStats is the creator dashboard summary returned by the
// monetization endpoint.
type MonetizationStats struct {
	Followers  int     `json:"followers"`
	WatchHours int64   `json:"watch_hours"`
	Earnings   float64 `json:"earnings"`
	Status     string  `json:"status"`
}
