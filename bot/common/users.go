package common

import (
	"github.com/bwmarrin/discordgo"
)

// InteractionUser returns the user behind an interaction. Guild interactions
// carry the user on the member, DMs carry it directly.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// UserID returns the ID of the user who triggered the interaction
func UserID(i *discordgo.InteractionCreate) string {
	if user := InteractionUser(i); user != nil {
		return user.ID
	}
	return ""
}

// InteractionDisplayName resolves a display name from the interaction payload
// alone: guild nickname first, then username.
func InteractionDisplayName(i *discordgo.InteractionCreate) (string, bool) {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick, true
	}
	if user := InteractionUser(i); user != nil && user.Username != "" {
		return user.Username, true
	}
	return "", false
}

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
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

	// Fallback to just getting the user
	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// DisplayName returns the invoking user's display name, asking Discord only
// when the interaction does not carry one
func DisplayName(s *discordgo.Session, i *discordgo.InteractionCreate) string {
	if name, ok := InteractionDisplayName(i); ok {
		return name
	}
	return GetDisplayName(s, i.GuildID, UserID(i))
}
