package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"warden-bot/utils"
)

// Run opens the gateway session, starts the tick loop and blocks until
// an interrupt signal.
func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	// Command registration happens per guild as GuildCreate events
	// arrive after the session opens.
	b.ResubscribeReminders()
	b.Loop.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	if b.Config.LogChannelID != "" {
		if err := utils.LogInfo(b.Session, b.Config.LogChannelID, "System", "Startup", "Bot has started successfully."); err != nil {
			log.Printf("Failed to send startup log: %v", err)
		}
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
