package bot

import "testing"

func TestReactionEligible(t *testing.T) {
	const botID = "bot"
	cases := []struct {
		name      string
		emoji     string
		reactorID string
		want      bool
	}{
		{"delete reaction from member", deleteReaction, "user1", true},
		{"wrong emoji", "👍", "user1", false},
		{"bot's own reaction", deleteReaction, botID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reactionEligible(tc.emoji, tc.reactorID, botID); got != tc.want {
				t.Errorf("reactionEligible(%q, %q) = %v, want %v", tc.emoji, tc.reactorID, got, tc.want)
			}
		})
	}
}

func TestDeleteAuthorized(t *testing.T) {
	const botID = "bot"
	cases := []struct {
		name           string
		replyAuthor    string
		originalAuthor string
		reactor        string
		want           bool
	}{
		{"requester retracts the reply", botID, "alice", "alice", true},
		{"someone else may never delete", botID, "alice", "mallory", false},
		{"reply not authored by bot", "alice", "alice", "alice", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := deleteAuthorized(tc.replyAuthor, botID, tc.originalAuthor, tc.reactor)
			if got != tc.want {
				t.Errorf("deleteAuthorized(%q, %q, %q) = %v, want %v", tc.replyAuthor, tc.originalAuthor, tc.reactor, got, tc.want)
			}
		})
	}
}
