package bot

import (
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/time-tender/config"
	"github.com/onnwee/time-tender/telemetry"
	"github.com/onnwee/time-tender/times"
)

const (
	cmdRegister   = "?time"
	cmdDeregister = "?time-deregister"
)

// onMessageCreate classifies every inbound message up front: not in a guild,
// in a guild we don't serve, our own message, or a member message. Only the
// last fans out to the three content handlers, which run concurrently and
// independently (each performs its own registry access).
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" {
		return
	}
	binding, ok := b.guilds[m.GuildID]
	if !ok {
		return
	}

	if m.Author.ID == s.State.User.ID {
		// Own reply: attach the delete affordance, nothing else.
		if err := s.MessageReactionAdd(m.ChannelID, m.ID, deleteReaction); err != nil {
			slog.Error("failed to add delete reaction", slog.Any("err", err), slog.String("component", "bot"))
		}
		return
	}

	var wg sync.WaitGroup
	for _, handle := range []func(*discordgo.Session, *discordgo.MessageCreate, config.GuildBinding){
		b.handleRegistration,
		b.handleDeregistration,
		b.handleConversion,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handle(s, m, binding)
		}()
	}
	wg.Wait()
}

// matchesRegistration reports whether content is the registration command in
// an allowed channel. With no registration channel configured the command is
// honored anywhere.
func matchesRegistration(content, channelID string, b config.GuildBinding) bool {
	return content == cmdRegister && (b.RegChannelID == "" || channelID == b.RegChannelID)
}

// matchesDeregistration reports whether content is the deregistration command
// in the guild's registration channel. Guilds without one never match.
func matchesDeregistration(content, channelID string, b config.GuildBinding) bool {
	return content == cmdDeregister && b.RegChannelID != "" && channelID == b.RegChannelID
}

func (b *Bot) handleRegistration(s *discordgo.Session, m *discordgo.MessageCreate, binding config.GuildBinding) {
	if !matchesRegistration(m.Content, m.ChannelID, binding) {
		return
	}
	userID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		slog.Error("unparseable author id", slog.String("author_id", m.Author.ID), slog.Any("err", err), slog.String("component", "bot"))
		return
	}

	token := randomLinkToken()
	if err := b.registry.IssueLink(b.ctx, userID, token, time.Now().UTC()); err != nil {
		slog.Error("failed to issue registration link", slog.Any("err", err), slog.String("component", "bot"))
		return
	}
	telemetry.Inc(telemetry.LinksIssued)

	dm, err := s.UserChannelCreate(m.Author.ID)
	if err != nil {
		slog.Error("failed to open dm channel", slog.Any("err", err), slog.String("component", "bot"))
		return
	}
	if _, err := s.ChannelMessageSend(dm.ID, registrationDM(b.cfg.AppURL, token)); err != nil {
		slog.Error("failed to send registration dm", slog.Any("err", err), slog.String("component", "bot"))
		return
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, "Check your direct messages for a registration link", m.Reference()); err != nil {
		slog.Error("failed to send registration ack", slog.Any("err", err), slog.String("component", "bot"))
	}
}

func (b *Bot) handleDeregistration(s *discordgo.Session, m *discordgo.MessageCreate, binding config.GuildBinding) {
	if !matchesDeregistration(m.Content, m.ChannelID, binding) {
		return
	}
	userID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		slog.Error("unparseable author id", slog.String("author_id", m.Author.ID), slog.Any("err", err), slog.String("component", "bot"))
		return
	}
	if err := b.registry.Delete(b.ctx, userID); err != nil {
		slog.Error("failed to deregister user", slog.Any("err", err), slog.String("component", "bot"))
		return
	}
	telemetry.Inc(telemetry.Deregistrations)
	if _, err := s.ChannelMessageSendReply(m.ChannelID, "You have successfully unregistered", m.Reference()); err != nil {
		slog.Error("failed to send deregistration confirmation", slog.Any("err", err), slog.String("component", "bot"))
	}
}

func (b *Bot) handleConversion(s *discordgo.Session, m *discordgo.MessageCreate, binding config.GuildBinding) {
	telemetry.Inc(telemetry.MessagesScanned)

	candidates := times.Extract(m.Content)
	telemetry.Add(telemetry.CandidatesFound, len(candidates))
	naives := b.resolver.Resolve(candidates, time.Now().UTC())
	telemetry.Add(telemetry.CandidatesResolved, len(naives))
	// Nothing specified or understood: suppress the reply entirely.
	if len(naives) == 0 {
		return
	}

	userID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		slog.Error("unparseable author id", slog.String("author_id", m.Author.ID), slog.Any("err", err), slog.String("component", "bot"))
		return
	}

	tz, registered, err := b.registry.Timezone(b.ctx, userID)
	if err != nil {
		slog.Error("registry lookup failed", slog.Any("err", err), slog.String("component", "bot"))
		return
	}
	if !registered {
		telemetry.Inc(telemetry.UnregisteredPrompts)
		b.reply(s, m, registrationPrompt(binding))
		return
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Error("registered timezone failed to load", slog.String("tz", tz), slog.Any("err", err), slog.String("component", "bot"))
		b.reply(s, m, registrationPrompt(binding))
		return
	}

	epochs := times.LocalizeAll(naives, loc)
	telemetry.Inc(telemetry.ConversionReplies)
	b.reply(s, m, times.FormatReply(epochs))
}

func (b *Bot) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		slog.Error("failed to send reply", slog.Any("err", err), slog.String("component", "bot"))
	}
}

// randomLinkToken draws a 7-digit link id uniformly.
func randomLinkToken() int64 {
	return rand.Int64N(9000000) + 1000000
}

func formatToken(token int64) string {
	return strconv.FormatInt(token, 10)
}

func registrationDM(appURL string, token int64) string {
	return "Visit this link to register your timezone: \n\n<" +
		appURL + formatToken(token) + ">\n\n" +
		"This will collect and store your discord id and your timezone.\n" +
		"Both of these are only used to understand what time you mean when you use the bot. " +
		"This data is stored securely and not processed in any way and can be deleted with " +
		"`" + cmdDeregister + "`"
}

func registrationPrompt(binding config.GuildBinding) string {
	if binding.RegChannelID != "" {
		return "You haven't registered with me yet or registration has failed\n" +
			"Register by typing `" + cmdRegister + "` in the <#" + binding.RegChannelID + "> channel"
	}
	return "You haven't registered with me yet or registration has failed\n" +
		"Register by typing `" + cmdRegister + "`"
}
