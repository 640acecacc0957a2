package models

// User is a hydrated user object supplied by the user service.
type User struct {
	ID          string `json:"id" bson:"id"`
	Username    string `json:"username" bson:"username"`
	DisplayName string `json:"display_name" bson:"display-name"`
	AvatarPath  string `json:"avatar_path,omitempty" bson:"avatar-path,omitempty"`
}

// ContentKind names the two votable, metric-bearing entity kinds.
type ContentKind string

// Content kinds. The kind scopes metric sub-collections to their parent
// collection.
const (
	KindPost   ContentKind = "posts"
	KindAnswer ContentKind = "answers"
)
