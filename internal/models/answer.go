package models

import (
	"time"
)

// Answer is the hydrated read model for a post answer.
type Answer struct {
	ID           string    `json:"id"`
	PostID       string    `json:"post_id"`
	CreatedBy    *User     `json:"created_by"`
	Text         string    `json:"text"`
	DateCreated  time.Time `json:"date_created"`
	DateModified time.Time `json:"date_modified"`
	Media        []Media   `json:"media,omitempty"`
	Metrics      Metrics   `json:"metrics"`
}

// AnswerDocument is the persisted shape of an answer. It belongs to exactly
// one post through the exercise-post foreign key.
type AnswerDocument struct {
	ID           string    `bson:"id"`
	CreatedBy    string    `bson:"created-by"`
	PostID       string    `bson:"exercise-post"`
	Text         string    `bson:"text"`
	DateCreated  time.Time `bson:"created-date"`
	DateModified time.Time `bson:"modified-date"`
}

// Media is a binary asset attached to an answer.
type Media struct {
	Path string `json:"path"`
}
