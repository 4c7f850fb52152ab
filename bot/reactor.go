package bot

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/time-tender/telemetry"
)

// onReactionAdd deletes one of the bot's replies when the delete reaction is
// added by the user whose message prompted that reply, and by no one else.
func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if _, ok := b.guilds[r.GuildID]; !ok {
		return
	}
	if !reactionEligible(r.Emoji.Name, r.UserID, s.State.User.ID) {
		return
	}

	reply, err := s.ChannelMessage(r.ChannelID, r.MessageID)
	if err != nil {
		slog.Error("failed to fetch reacted message", slog.Any("err", err), slog.String("component", "bot"))
		return
	}
	if reply.Author == nil || reply.MessageReference == nil {
		return
	}

	// Resolve the message the reply was responding to; only its author may
	// retract the reply.
	refChannel := reply.MessageReference.ChannelID
	if refChannel == "" {
		refChannel = r.ChannelID
	}
	original, err := s.ChannelMessage(refChannel, reply.MessageReference.MessageID)
	if err != nil {
		slog.Error("failed to fetch original message", slog.Any("err", err), slog.String("component", "bot"))
		return
	}
	if original.Author == nil {
		return
	}
	if !deleteAuthorized(reply.Author.ID, s.State.User.ID, original.Author.ID, r.UserID) {
		return
	}

	if err := s.ChannelMessageDelete(r.ChannelID, r.MessageID); err != nil {
		slog.Error("failed to delete reply", slog.Any("err", err), slog.String("component", "bot"))
		return
	}
	telemetry.Inc(telemetry.RepliesDeleted)
}

// reactionEligible filters reaction events before any message fetch: the
// emoji must be the delete reaction and the reactor must not be the bot.
func reactionEligible(emoji, reactorID, botID string) bool {
	if emoji != deleteReaction {
		return false
	}
	if reactorID == botID {
		return false
	}
	return true
}

// deleteAuthorized decides whether a reaction may delete a bot reply, given
// the resolved reply and original-message authorship.
func deleteAuthorized(replyAuthorID, botID, originalAuthorID, reactorID string) bool {
	return replyAuthorID == botID && originalAuthorID == reactorID
}
