package handlers

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"warden-bot/bot"
	"warden-bot/utils"
)

// HandleServerCommand manages per-guild bot settings.
func HandleServerCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	cfg, err := b.Store.GetOrCreate(i.GuildID, "")
	if err != nil {
		log.Printf("Error loading guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to load the server configuration.")
		return
	}

	switch sub.Name {
	case "notify_channel":
		channel := sub.Options[0].ChannelValue(s)
		cfg.BotNotificationsChannel = channel.ID
		if err := b.Store.Save(cfg); err != nil {
			log.Printf("Error saving guild config for %s: %v", i.GuildID, err)
			utils.SendErrorResponse(s, i, "Failed to save the server configuration.")
			return
		}
		utils.SendPublicResponse(s, i, fmt.Sprintf("Bot notifications will be sent to <#%s>.", channel.ID))
	case "welcome":
		var channelID, message string
		for _, opt := range sub.Options {
			switch opt.Name {
			case "channel":
				channelID = opt.ChannelValue(s).ID
			case "message":
				message = opt.StringValue()
			}
		}
		cfg.WelcomeChannelID = channelID
		cfg.WelcomeMessage = message
		if err := b.Store.Save(cfg); err != nil {
			log.Printf("Error saving guild config for %s: %v", i.GuildID, err)
			utils.SendErrorResponse(s, i, "Failed to save the server configuration.")
			return
		}
		utils.SendPublicResponse(s, i, fmt.Sprintf("Welcome messages will be sent to <#%s>.", channelID))
	}
}
