package domain

import "time"

const postPreviewLen = 15

// Post is a single authored text entry. Author and PubDate are set once at
// creation; only Text, Group and Image change afterwards.
type Post struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
	Author  User      `json:"author"`
	Group   *Group    `json:"group,omitempty"`
	Image   string    `json:"image,omitempty"`
}

// String returns the first 15 characters of the text.
func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > postPreviewLen {
		r = r[:postPreviewLen]
	}
	return string(r)
}

// GroupID returns the id of the post's group, or 0 when it has none.
func (p Post) GroupID() int64 {
	if p.Group == nil {
		return 0
	}
	return p.Group.ID
}

// IsAuthoredBy reports whether u wrote the post.
func (p Post) IsAuthoredBy(u User) bool {
	return u.ID != 0 && p.Author.ID == u.ID
}
