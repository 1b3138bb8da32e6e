package sqlstore

import (
	"time"

	"github.com/yatube/yatube/internal/core/domain"
)

type userRecord struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	Email        string `gorm:"size:254"`
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"size:16;not null"`
	CreatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type groupRecord struct {
	ID          int64  `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"size:100;uniqueIndex;not null"`
	Description string `gorm:"type:text;not null"`
}

func (groupRecord) TableName() string { return "groups" }

func (r groupRecord) toDomain() *domain.Group {
	return &domain.Group{ID: r.ID, Title: r.Title, Slug: r.Slug, Description: r.Description}
}

type postRecord struct {
	ID       int64        `gorm:"primaryKey"`
	Text     string       `gorm:"type:text;not null"`
	PubDate  time.Time    `gorm:"index;not null"`
	AuthorID int64        `gorm:"index;not null"`
	Author   userRecord   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	GroupID  *int64       `gorm:"index"`
	Group    *groupRecord `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image    string       `gorm:"size:255"`
}

func (postRecord) TableName() string { return "posts" }

func (r postRecord) toDomain() *domain.Post {
	author := r.Author.toDomain()
	author.PasswordHash = ""

	p := &domain.Post{
		ID:      r.ID,
		Text:    r.Text,
		PubDate: r.PubDate.UTC(),
		Author:  *author,
		Image:   r.Image,
	}
	if r.Group != nil {
		p.Group = r.Group.toDomain()
	}
	return p
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
