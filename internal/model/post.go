package model

import (
	"slices"
	"time"
)

// Post is a public message with embedded likes and comments.
type Post struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `json:"likes"`
	Comments  []Comment `json:"comments"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"date"`
}

// OwnerID returns the identity that created the post.
func (p *Post) OwnerID() string {
	return p.UserID
}

// Like records that a user liked a post.
type Like struct {
	UserID string `json:"user"`
}

// Comment is a reply to a post.
type Comment struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

// OwnerID returns the identity that wrote the comment.
func (c *Comment) OwnerID() string {
	return c.UserID
}

// LikedBy reports whether the user already liked the post.
func (p *Post) LikedBy(userID string) bool {
	return slices.ContainsFunc(p.Likes, func(l Like) bool { return l.UserID == userID })
}

// Comment returns the comment with the given ID, or nil.
func (p *Post) Comment(id string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}
