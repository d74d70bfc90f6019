package defs

import "github.com/bwmarrin/discordgo"

var manageMessages int64 = discordgo.PermissionManageMessages

var Remind = &discordgo.ApplicationCommand{
	Name:                     "remind",
	Description:              "Manage timed reminders for this server",
	DefaultMemberPermissions: &manageMessages,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add",
			Description: "Add a timed reminder",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Unique name of the reminder",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "content",
					Description: "Message delivered when the reminder fires",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "format",
					Description: "How the date is interpreted",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "relative (days-hours-minutes)", Value: "relative"},
						{Name: "weekly (weekday-hour, e.g. mo-17)", Value: "weekly"},
						{Name: "absolute (month-day-hour)", Value: "absolute"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "date",
					Description: "Date spec, e.g. 1-0-0, fr-18, 12-24-18",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "repeat",
					Description: "Reschedule after firing (ignored for absolute dates)",
					Required:    false,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "List this server's timed reminders",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove",
			Description: "Remove a timed reminder by name",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Name of the reminder to remove",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "purge",
			Description: "Remove all timed reminders for this server",
		},
	},
}
