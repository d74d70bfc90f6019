package model

import "time"

// GuildConfig is the per-guild persisted state: notification channel,
// welcome settings, timed reminders and isolation configuration. It is
// the unit of serialization for the guild store.
type GuildConfig struct {
	GuildID                 string           `json:"guild_id"`
	GuildName               string           `json:"guild_name"`
	ProfileCreationDate     time.Time        `json:"profile_creation_date"`
	BotNotificationsChannel string           `json:"bot_notifications_channel"`
	WelcomeChannelID        string           `json:"welcome_channel_id,omitempty"`
	WelcomeMessage          string           `json:"welcome_message,omitempty"`
	TimedReminders          []*TimedReminder `json:"timed_reminders"`
	Isolation               IsolationConfig  `json:"isolation"`
}

// ReminderByName returns the reminder with the given name, if any.
func (g *GuildConfig) ReminderByName(name string) (*TimedReminder, bool) {
	for _, r := range g.TimedReminders {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// RemoveReminder deletes the reminder with the given name and reports
// whether one was removed.
func (g *GuildConfig) RemoveReminder(name string) bool {
	for idx, r := range g.TimedReminders {
		if r.Name == name {
			g.TimedReminders = append(g.TimedReminders[:idx], g.TimedReminders[idx+1:]...)
			return true
		}
	}
	return false
}
