// Package bot runs the Discord event consumer: it routes inbound messages to
// the guild they belong to, scans them for time tokens, handles the
// registration/deregistration commands, and reacts to its own replies with a
// delete affordance only the original requester may use.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/time-tender/config"
	"github.com/onnwee/time-tender/db"
	"github.com/onnwee/time-tender/telemetry"
	"github.com/onnwee/time-tender/times"
)

// deleteReaction is attached to every bot reply; the original requester can
// use it to retract the reply.
const deleteReaction = "❌"

type Bot struct {
	cfg      *config.Config
	registry *db.Registry
	resolver *times.Resolver

	// guild id -> binding, built once at startup, immutable thereafter
	guilds map[string]config.GuildBinding

	ctx     context.Context
	session *discordgo.Session
}

func New(cfg *config.Config, registry *db.Registry) *Bot {
	guilds := make(map[string]config.GuildBinding, len(cfg.Guilds))
	for _, g := range cfg.Guilds {
		guilds[g.GuildID] = g
	}
	return &Bot{
		cfg:      cfg,
		registry: registry,
		resolver: times.NewResolver(),
		guilds:   guilds,
	}
}

// Run connects the Discord session and blocks until ctx is cancelled or the
// connection cannot be established. The caller supervises it alongside the
// web server; if either exits the whole process comes down.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	s, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	s.AddHandler(b.onMessageCreate)
	s.AddHandler(b.onReactionAdd)

	if err := s.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("discord close error", slog.Any("err", err))
		}
	}()
	b.session = s

	// Check each configured guild is reachable. A guild the bot is not
	// authorised for stays inactive and is logged; it never crashes the process.
	connected := 0
	for _, g := range b.cfg.Guilds {
		guild, err := s.Guild(g.GuildID)
		if err != nil {
			slog.Warn("guild connection failed", slog.String("guild_id", g.GuildID), slog.Any("err", err), slog.String("component", "bot"))
			continue
		}
		slog.Info("guild connected", slog.String("guild", guild.Name), slog.String("guild_id", g.GuildID), slog.String("component", "bot"))
		connected++
	}
	telemetry.SetGuildsConnected(connected)

	<-ctx.Done()
	return nil
}

// parseSnowflake converts a Discord id string to the int64 registry key.
func parseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
