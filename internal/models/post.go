package models

import (
	"time"
)

// Post is the fully hydrated read model for an exercise post: the stored
// document joined with its author, metric counts, exercise references and
// answers.
type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CreatedBy    *User      `json:"created_by"`
	DateCreated  time.Time  `json:"date_created"`
	DateModified time.Time  `json:"date_modified"`
	ImagePath    string     `json:"image_path,omitempty"`
	VideoPath    string     `json:"video_path,omitempty"`
	Metrics      Metrics    `json:"metrics"`
	Exercises    []Exercise `json:"exercises"`
	Answers      []*Answer  `json:"answers"`
}

// PostDocument is the persisted shape of a post in the document store.
// The id is assigned by the store on creation and immutable thereafter.
type PostDocument struct {
	ID           string    `bson:"id"`
	CreatedBy    string    `bson:"created-by"`
	Title        string    `bson:"title"`
	Description  string    `bson:"description"`
	DateCreated  time.Time `bson:"created-date"`
	DateModified time.Time `bson:"modified-date"`
	ImagePath    string    `bson:"image-path,omitempty"`
	VideoPath    string    `bson:"video-path,omitempty"`
}
