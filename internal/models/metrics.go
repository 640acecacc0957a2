package models

// VoteDirection is a viewer's vote on a content item.
type VoteDirection int

// Vote directions, persisted as the status field of a vote entry.
const (
	VoteDown    VoteDirection = -1
	VoteNeutral VoteDirection = 0
	VoteUp      VoteDirection = 1
)

// Valid reports whether d is one of the three recognized directions.
// Anything else read back from the store is a corruption signal.
func (d VoteDirection) Valid() bool {
	return d == VoteDown || d == VoteNeutral || d == VoteUp
}

func (d VoteDirection) String() string {
	switch d {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	case VoteNeutral:
		return "neutral"
	}
	return "invalid"
}

// Metrics is the per-viewer metric snapshot of a content item. The counts
// are global; CurrentVoteDirection is a projection for the requesting user.
type Metrics struct {
	Upvotes              int           `json:"upvotes"`
	Downvotes            int           `json:"downvotes"`
	Likes                int           `json:"likes"`
	Views                int           `json:"views"`
	CurrentVoteDirection VoteDirection `json:"current_vote_direction"`
}

// VoteEntry is the persisted vote of one user on one content item. The
// ledger guarantees at most one entry per (content, voter) pair.
type VoteEntry struct {
	ID      string        `bson:"id"`
	VotedBy string        `bson:"voted-by"`
	Status  VoteDirection `bson:"status"`
}

// LikeEntry is the persisted like of one user on a post.
type LikeEntry struct {
	LikedBy string `bson:"liked-by"`
}

// ViewEntry is one recorded view of a post.
type ViewEntry struct {
	ViewedBy string `bson:"viewed-by"`
}
