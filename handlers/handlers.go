package handlers

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"warden-bot/bot"
	"warden-bot/commands"
	"warden-bot/handlers/isolation"
	"warden-bot/handlers/reminder"
	"warden-bot/utils"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"remind": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			reminder.HandleRemindCommand(s, i, b)
		},
		"isolation": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			isolation.HandleIsolationCommand(s, i, b)
		},
		"server": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleServerCommand(s, i, b)
		},
		"status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if _, err := b.Store.GetOrCreate(g.ID, g.Name); err != nil {
			log.Printf("Error creating guild config for %s: %v", g.ID, err)
			return
		}
		b.RefreshCommands(g.ID, commands.GenerateCommands())
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		handleMemberWelcome(s, m, b)
	})
}

func handleMemberWelcome(s *discordgo.Session, m *discordgo.GuildMemberAdd, b *bot.Bot) {
	cfg, err := b.Store.GetOrCreate(m.GuildID, "")
	if err != nil {
		log.Printf("Error loading guild config for welcome in %s: %v", m.GuildID, err)
		return
	}
	if cfg.WelcomeChannelID == "" || cfg.WelcomeMessage == "" {
		return
	}
	msg := strings.ReplaceAll(cfg.WelcomeMessage, "{user}", m.Mention())
	if _, err := s.ChannelMessageSend(cfg.WelcomeChannelID, msg); err != nil {
		log.Printf("Failed to send welcome message in guild %s: %v", m.GuildID, err)
		if b.Config.LogChannelID != "" {
			_ = utils.LogWarn(s, b.Config.LogChannelID, "Welcome", "Send", err.Error())
		}
	}
}
