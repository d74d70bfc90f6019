package reminder

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"warden-bot/bot"
	"warden-bot/model"
	"warden-bot/tasks"
	"warden-bot/utils"
)

func HandleRemindCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "add":
		handleAdd(s, i, b, sub.Options)
	case "list":
		handleList(s, i, b)
	case "remove":
		handleRemove(s, i, b, sub.Options)
	case "purge":
		handlePurge(s, i, b)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)

	name := opts["name"].StringValue()
	content := opts["content"].StringValue()
	format := opts["format"].StringValue()
	dateSpec := opts["date"].StringValue()
	repeat := false
	if opt, ok := opts["repeat"]; ok {
		repeat = opt.BoolValue()
	}

	cfg, err := b.Store.GetOrCreate(i.GuildID, "")
	if err != nil {
		log.Printf("Error loading guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to load the server configuration.")
		return
	}

	if _, exists := cfg.ReminderByName(name); exists {
		utils.SendErrorResponse(s, i, fmt.Sprintf("A timed reminder named `%s` already exists.", name))
		return
	}

	reminder, err := model.NewTimedReminder(name, content, repeat, format, dateSpec, time.Now().UTC())
	if err != nil {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Invalid date spec: %v", err))
		return
	}

	cfg.TimedReminders = append(cfg.TimedReminders, reminder)
	if err := b.Store.Save(cfg); err != nil {
		log.Printf("Error saving guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to save the reminder.")
		return
	}

	tasks.AttachReminder(b.Loop, s, b.Store, i.GuildID, name)

	utils.SendPublicResponse(s, i, fmt.Sprintf(
		"Timed Reminder `%s` successfully added.\nThe reminder will go off at: <t:%d>.", name, reminder.Expiration))
}

func handleList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cfg, err := b.Store.GetOrCreate(i.GuildID, "")
	if err != nil {
		log.Printf("Error loading guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to load the server configuration.")
		return
	}

	if len(cfg.TimedReminders) == 0 {
		utils.SendErrorResponse(s, i, "This server has no timed reminders.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Timed reminders (%d):**\n", len(cfg.TimedReminders)))
	for _, r := range cfg.TimedReminders {
		repeatStr := "one-shot"
		if r.Repeat {
			repeatStr = "repeating"
		}
		sb.WriteString(fmt.Sprintf("- `%s` (%s, %s `%s`) fires at <t:%d>\n",
			r.Name, repeatStr, r.DateFormat, r.DateSpec, r.Expiration))
	}
	utils.SendPublicResponse(s, i, sb.String())
}

func handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	name := opts["name"].StringValue()

	cfg, err := b.Store.GetOrCreate(i.GuildID, "")
	if err != nil {
		log.Printf("Error loading guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to load the server configuration.")
		return
	}

	if !cfg.RemoveReminder(name) {
		utils.SendErrorResponse(s, i, fmt.Sprintf("No timed reminder named `%s` exists.", name))
		return
	}
	tasks.DetachReminder(b.Loop, i.GuildID, name)

	if err := b.Store.Save(cfg); err != nil {
		log.Printf("Error saving guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to save the server configuration.")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Timed Reminder `%s` removed.", name))
}

func handlePurge(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cfg, err := b.Store.GetOrCreate(i.GuildID, "")
	if err != nil {
		log.Printf("Error loading guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to load the server configuration.")
		return
	}

	count := len(cfg.TimedReminders)
	for _, r := range cfg.TimedReminders {
		tasks.DetachReminder(b.Loop, i.GuildID, r.Name)
	}
	cfg.TimedReminders = cfg.TimedReminders[:0]

	if err := b.Store.Save(cfg); err != nil {
		log.Printf("Error saving guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to save the server configuration.")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Purged %d timed reminder(s).", count))
}
