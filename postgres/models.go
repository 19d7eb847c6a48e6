package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/vibenet/backend/api"
)

// An account represents a registered user in the database.
type account struct {
	bun.BaseModel `bun:"table:accounts"`

	Email        string  `bun:",pk"`
	Name         string  `bun:",notnull"`
	PasswordHash string  `bun:"password_hash,notnull"`
	ProfilePic   string  `bun:",nullzero,default:''"`
	Bio          string  `bun:",nullzero,default:''"`
	WatchHours   int64   `bun:",notnull,default:0"`
	Earnings     float64 `bun:",notnull,default:0"`
}

// A post carries the author snapshot and the emoji counter map as JSONB.
type post struct {
	bun.BaseModel `bun:"table:posts"`

	ID          int64          `bun:",pk,autoincrement"`
	AuthorEmail string         `bun:",notnull"`
	AuthorName  string         `bun:",notnull"`
	ProfilePic  string         `bun:",nullzero,default:''"`
	PostText    string         `bun:"post_text,nullzero,default:''"`
	FileURL     string         `bun:",nullzero,default:''"`
	CreatedAt   time.Time      `bun:",nullzero,default:now()"`
	Reactions   map[string]int `bun:"reactions,type:jsonb"`
}

// A reactionEdge is the single current emoji an account holds on a post.
// The composite primary key enforces at most one edge per pair.
type reactionEdge struct {
	bun.BaseModel `bun:"table:reaction_edges"`

	AccountEmail string `bun:"account_email,pk"`
	PostID       int64  `bun:"post_id,pk"`
	Emoji        string `bun:",notnull"`
}

// A followEdge is a directed follower->target relation, unique per pair.
type followEdge struct {
	bun.BaseModel `bun:"table:follow_edges"`

	FollowerEmail string    `bun:"follower_email,pk"`
	TargetEmail   string    `bun:"target_email,pk"`
	CreatedAt     time.Time `bun:",notnull"`
}

type notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID           int64     `bun:",pk,autoincrement"`
	AccountEmail string    `bun:",notnull"`
	NotifText    string    `bun:"notif_text,notnull"`
	Seen         bool      `bun:",notnull,default:false"`
	CreatedAt    time.Time `bun:",nullzero,default:now()"`
}

type message struct {
	bun.BaseModel `bun:"table:messages"`

	ID        int64     `bun:",pk,autoincrement"`
	Sender    string    `bun:",notnull"`
	Recipient string    `bun:",notnull"`
	MsgText   string    `bun:"msg_text,notnull"`
	CreatedAt time.Time `bun:",nullzero,default:now()"`
}

type ad struct {
	bun.BaseModel `bun:"table:ads"`

	ID          int64   `bun:",pk,autoincrement"`
	OwnerEmail  string  `bun:",notnull"`
	Title       string  `bun:",notnull"`
	Budget      float64 `bun:",notnull"`
	Impressions int64   `bun:",notnull,default:0"`
}

func (a account) APIAccount() api.Account {
	return api.Account{
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		ProfilePic:   a.ProfilePic,
		Bio:          a.Bio,
		WatchHours:   a.WatchHours,
		Earnings:     a.Earnings,
	}
}

func (p post) APIPost() api.Post {
	reactions := p.Reactions
	if reactions == nil {
		reactions = map[string]int{}
	}
	return api.Post{
		ID:          p.ID,
		AuthorEmail: p.AuthorEmail,
		AuthorName:  p.AuthorName,
		ProfilePic:  p.ProfilePic,
		Text:        p.PostText,
		FileURL:     p.FileURL,
		CreatedAt:   p.CreatedAt,
		Reactions:   reactions,
	}
}

func (n notification) APINotification() api.Notification {
	return api.Notification{
		ID:        n.ID,
		Account:   n.AccountEmail,
		Text:      n.NotifText,
		Seen:      n.Seen,
		CreatedAt: n.CreatedAt,
	}
}

func (m message) APIMessage() api.Message {
	return api.Message{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Text:      m.MsgText,
		CreatedAt: m.CreatedAt,
	}
}

func (a ad) APIAd() api.Ad {
	return api.Ad{
		ID:          a.ID,
		OwnerEmail:  a.OwnerEmail,
		Title:       a.Title,
		Budget:      a.Budget,
		Impressions: a.Impressions,
	}
}
