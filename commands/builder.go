package commands

import (
	"github.com/bwmarrin/discordgo"

	"warden-bot/commands/defs"
)

// GenerateCommands returns the full slash command set registered for
// each guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Remind,
		defs.Isolation,
		defs.Server,
		defs.Status,
	}
}
