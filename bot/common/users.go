package common

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"studyrace/models"
	"studyrace/service"
)

// InvokingUser returns the Discord user behind an interaction, in a guild or a DM
func InvokingUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// EnsureUser returns the account linked to the invoking Discord user, registering it on first use
func EnsureUser(ctx context.Context, users service.UserService, i *discordgo.InteractionCreate) (*models.User, error) {
	du := InvokingUser(i)
	if du == nil {
		return nil, fmt.Errorf("interaction has no user")
	}
	return EnsureDiscordUser(ctx, users, du)
}

// EnsureDiscordUser returns the account linked to du, registering it on first use
func EnsureDiscordUser(ctx context.Context, users service.UserService, du *discordgo.User) (*models.User, error) {
	discordID, err := strconv.ParseInt(du.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid discord id %q: %w", du.ID, err)
	}
	return users.RegisterDiscordUser(ctx, discordID, du.Username)
}

// GetDisplayName returns the server-specific display name for a user.
// Falls back to the username when no nickname is set or the lookup fails.
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	if guildID != "" {
		member, err := s.GuildMember(guildID, userID)
		if err == nil && member != nil {
			if member.Nick != "" {
				return member.Nick
			}
			if member.User != nil {
				return member.User.Username
			}
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// Options indexes the options of a command or subcommand by name
func Options(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
