// Package model defines the rows persisted by the blog.
package model

import "time"

// User is a registered author. Email is the login key; it is indexed but
// uniqueness is not enforced.
type User struct {
	Id           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"not null"`
	Email        string    `json:"email" gorm:"index;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;not null"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Post is a blog entry. Author is free text and Image is the stored upload name.
type Post struct {
	Id        int       `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" form:"title" gorm:"not null"`
	Content   string    `json:"content" form:"content" gorm:"not null"`
	Image     string    `json:"image" form:"image" gorm:"not null"`
	Author    string    `json:"author" form:"author" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key" gorm:"uniqueIndex"`
	Value string `json:"value" form:"value"`
}
