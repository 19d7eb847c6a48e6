package redis

import (
	"encoding/json"
	"time"

	"github.com/vibenet/backend/api"
)

// A post represents a cached feed post. The reaction counter map rides as
// a JSON blob in one hash field.
type post struct {
	ID          int64     `redis:"id"`
	AuthorEmail string    `redis:"author_email"`
	AuthorName  string    `redis:"author_name"`
	ProfilePic  string    `redis:"profile_pic"`
	Text        string    `redis:"text"`
	FileURL     string    `redis:"file_url"`
	CreatedAt   time.Time `redis:"created_at"`
	Reactions   string    `redis:"reactions"`
}

func cachePost(p api.Post) (*post, error) {
	reactions, err := encodeReactions(p.Reactions)
	if err != nil {
		return nil, err
	}
	return &post{
		ID:          p.ID,
		AuthorEmail: p.AuthorEmail,
		AuthorName:  p.AuthorName,
		ProfilePic:  p.ProfilePic,
		Text:        p.Text,
		FileURL:     p.FileURL,
		CreatedAt:   p.CreatedAt,
		Reactions:   reactions,
	}, nil
}

func (p post) APIPost() (api.Post, error) {
	reactions := map[string]int{}
	if p.Reactions != "" {
		if err := json.Unmarshal([]byte(p.Reactions), &reactions); err != nil {
			return api.Post{}, err
		}
	}
	return api.Post{
		ID:          p.ID,
		AuthorEmail: p.AuthorEmail,
		AuthorName:  p.AuthorName,
		ProfilePic:  p.ProfilePic,
		Text:        p.Text,
		FileURL:     p.FileURL,
		CreatedAt:   p.CreatedAt,
		Reactions:   reactions,
	}, nil
}

func encodeReactions(reactions map[string]int) (string, error) {
	if reactions == nil {
		reactions = map[string]int{}
	}
	b, err := json.Marshal(reactions)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
