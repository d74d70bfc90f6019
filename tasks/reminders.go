// Package tasks binds persisted timed reminders to the tick loop.
package tasks

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"warden-bot/storage"
	"warden-bot/ticker"
)

// MessageSender is the slice of the Discord session reminder delivery
// needs. *discordgo.Session satisfies it.
type MessageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ReminderKey is the tick-subscription key for a guild's reminder.
func ReminderKey(guildID, name string) string {
	return "reminder/" + guildID + "/" + name
}

// AttachReminder subscribes a tick callback for the named reminder.
// Subscribing again for the same reminder replaces the callback, so
// startup resubscription is safe to repeat.
func AttachReminder(loop *ticker.TickLoop, sender MessageSender, store *storage.GuildStore, guildID, name string) {
	loop.Subscribe(ReminderKey(guildID, name), func(now time.Time) error {
		return runReminderTick(loop, sender, store, guildID, name, now)
	})
}

// DetachReminder removes the reminder's tick callback. Called by the
// remove and purge commands so fired callbacks never dangle.
func DetachReminder(loop *ticker.TickLoop, guildID, name string) {
	loop.Unsubscribe(ReminderKey(guildID, name))
}

func runReminderTick(loop *ticker.TickLoop, sender MessageSender, store *storage.GuildStore, guildID, name string, now time.Time) error {
	cfg, err := store.GetOrCreate(guildID, "")
	if err != nil {
		return fmt.Errorf("failed to load guild config for reminder %q: %w", name, err)
	}

	reminder, ok := cfg.ReminderByName(name)
	if !ok {
		// Removed from the config behind our back; drop the callback.
		loop.Unsubscribe(ReminderKey(guildID, name))
		return nil
	}

	if !reminder.HasExpiredRecently(now) {
		return nil
	}

	if cfg.BotNotificationsChannel == "" {
		log.Printf("Reminder %q in guild %s is due but no notification channel is configured", name, guildID)
	} else {
		content := fmt.Sprintf("Timed Reminder `%s`: %s", reminder.Name, reminder.Content)
		if _, err := sender.ChannelMessageSend(cfg.BotNotificationsChannel, content); err != nil {
			// Delivery is retried next tick while still inside the drift window.
			return fmt.Errorf("failed to deliver reminder %q in guild %s: %w", name, guildID, err)
		}
	}

	if !reminder.Repeat {
		cfg.RemoveReminder(name)
		loop.Unsubscribe(ReminderKey(guildID, name))
	} else {
		if err := reminder.UpdateExpiration(now); err != nil {
			return fmt.Errorf("failed to reschedule reminder %q in guild %s: %w", name, guildID, err)
		}
	}

	if err := store.Save(cfg); err != nil {
		return fmt.Errorf("failed to save guild config for %s after reminder %q fired: %w", guildID, name, err)
	}
	return nil
}
