package defs

import "github.com/bwmarrin/discordgo"

var manageGuild int64 = discordgo.PermissionManageServer

var Server = &discordgo.ApplicationCommand{
	Name:                     "server",
	Description:              "Server-level bot settings",
	DefaultMemberPermissions: &manageGuild,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "notify_channel",
			Description: "Set the channel for reminder and isolation notifications",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Notification channel",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "welcome",
			Description: "Set the welcome channel and message for new members",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel welcome messages are sent to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Welcome template; {user} mentions the new member",
					Required:    true,
				},
			},
		},
	},
}

var Status = &discordgo.ApplicationCommand{
	Name:        "status",
	Description: "Show bot uptime and host system information",
}
