package bot

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"

	"warden-bot/model"
	"warden-bot/scanner"
	"warden-bot/storage"
	"warden-bot/tasks"
	"warden-bot/ticker"
)

type Bot struct {
	Session            *discordgo.Session
	Config             *model.Config
	Store              *storage.GuildStore
	AuditDB            *sqlx.DB
	Loop               *ticker.TickLoop
	RegisteredCommands []*discordgo.ApplicationCommand
	StartTime          time.Time

	CommandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
}

func New(cfg *model.Config, store *storage.GuildStore, auditDB *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages

	b := &Bot{
		Session:   dg,
		Config:    cfg,
		Store:     store,
		AuditDB:   auditDB,
		Loop:      ticker.NewTickLoop(cfg.TickIntervalMS),
		StartTime: time.Now().UTC(),
	}

	// The isolation sweep runs at the start of every tick, before the
	// reminder broadcast.
	b.Loop.SetSweep(func(now time.Time) error {
		return scanner.SweepIsolation(b.Session, b.Store, b.AuditDB, now)
	})

	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.Loop.Stop()
	if b.AuditDB != nil {
		b.AuditDB.Close()
	}
	b.Session.Close()
}

// ResubscribeReminders re-attaches tick callbacks for every reminder
// persisted in the store. Called once at startup, so reminders survive
// restarts. Attaching is idempotent per reminder.
func (b *Bot) ResubscribeReminders() {
	for _, guildID := range b.Store.GuildIDs() {
		cfg, err := b.Store.GetOrCreate(guildID, "")
		if err != nil {
			log.Printf("Error loading guild config for %s during resubscription: %v", guildID, err)
			continue
		}
		for _, reminder := range cfg.TimedReminders {
			tasks.AttachReminder(b.Loop, b.Session, b.Store, guildID, reminder.Name)
		}
		if len(cfg.TimedReminders) > 0 {
			log.Printf("Resubscribed %d timed reminder(s) for guild %s", len(cfg.TimedReminders), guildID)
		}
	}
}

// RefreshCommands overwrites the slash commands registered for a guild.
func (b *Bot) RefreshCommands(guildID string, cmds []*discordgo.ApplicationCommand) {
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
	log.Printf("Registered %d commands for guild %s", len(registeredCmds), guildID)
}
