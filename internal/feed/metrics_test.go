package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spotcheck/spotfeed/internal/models"
)

func seedVotes(st *fakeStore, kind models.ContentKind, contentID string, up, down int) {
	for i := 0; i < up; i++ {
		st.votes = append(st.votes, fakeVote{kind: kind, contentID: contentID,
			entry: models.VoteEntry{ID: fmt.Sprintf("%s-up-%d", contentID, i), VotedBy: fmt.Sprintf("up-voter-%d", i), Status: models.VoteUp}})
	}
	for i := 0; i < down; i++ {
		st.votes = append(st.votes, fakeVote{kind: kind, contentID: contentID,
			entry: models.VoteEntry{ID: fmt.Sprintf("%s-down-%d", contentID, i), VotedBy: fmt.Sprintf("down-voter-%d", i), Status: models.VoteDown}})
	}
}

func TestVoteCounts(t *testing.T) {
	st := newFakeStore()
	seedVotes(st, models.KindPost, "post-1", 3, 2)
	seedVotes(st, models.KindPost, "post-2", 1, 0)
	seedVotes(st, models.KindAnswer, "post-1", 5, 5)

	resolver := NewMetricsResolver(st)
	up, down, err := resolver.VoteCounts(context.Background(), models.KindPost, "post-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up != 3 || down != 2 {
		t.Errorf("expected counts 3/2, got %d/%d", up, down)
	}
}

func TestSnapshot(t *testing.T) {
	st := newFakeStore()
	seedVotes(st, models.KindPost, "post-1", 2, 1)
	st.votes = append(st.votes, fakeVote{kind: models.KindPost, contentID: "post-1",
		entry: models.VoteEntry{ID: "v-viewer", VotedBy: "alice", Status: models.VoteDown}})
	st.likes = append(st.likes, fakeLike{postID: "post-1", userID: "bob"}, fakeLike{postID: "post-1", userID: "carol"})
	st.views = append(st.views, fakeView{postID: "post-1", userID: "bob"},
		fakeView{postID: "post-1", userID: "carol"}, fakeView{postID: "post-1", userID: "dave"})

	resolver := NewMetricsResolver(st)
	m, err := resolver.Snapshot(context.Background(), models.KindPost, "post-1", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Upvotes != 2 {
		t.Errorf("expected 2 upvotes, got %d", m.Upvotes)
	}
	if m.Downvotes != 2 {
		t.Errorf("expected 2 downvotes, got %d", m.Downvotes)
	}
	if m.Likes != 2 {
		t.Errorf("expected 2 likes, got %d", m.Likes)
	}
	if m.Views != 3 {
		t.Errorf("expected 3 views, got %d", m.Views)
	}
	if m.CurrentVoteDirection != models.VoteDown {
		t.Errorf("expected viewer direction Down, got %v", m.CurrentVoteDirection)
	}
}

func TestVoteDirectionFor(t *testing.T) {
	st := newFakeStore()
	st.votes = append(st.votes, fakeVote{kind: models.KindPost, contentID: "post-1",
		entry: models.VoteEntry{ID: "v1", VotedBy: "alice", Status: models.VoteUp}})
	resolver := NewMetricsResolver(st)
	ctx := context.Background()

	tests := []struct {
		name     string
		viewerID string
		want     models.VoteDirection
	}{
		{"existing vote", "alice", models.VoteUp},
		{"no prior vote", "bob", models.VoteNeutral},
		{"anonymous viewer", "", models.VoteNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.VoteDirectionFor(ctx, models.KindPost, "post-1", tt.viewerID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVoteDirectionForCorruptStatus(t *testing.T) {
	st := newFakeStore()
	st.votes = append(st.votes, fakeVote{kind: models.KindPost, contentID: "post-1",
		entry: models.VoteEntry{ID: "v1", VotedBy: "alice", Status: models.VoteDirection(42)}})
	resolver := NewMetricsResolver(st)

	_, err := resolver.VoteDirectionFor(context.Background(), models.KindPost, "post-1", "alice")
	var integrity *DataIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
}

func TestVoteCountsWrapsStoreError(t *testing.T) {
	st := newFakeStore()
	st.countErr["post-1"] = errors.New("connection reset")
	resolver := NewMetricsResolver(st)

	_, _, err := resolver.VoteCounts(context.Background(), models.KindPost, "post-1")
	var resolution *ResolutionError
	if !errors.As(err, &resolution) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if resolution.ContentID != "post-1" {
		t.Errorf("expected content id post-1, got %q", resolution.ContentID)
	}
}
