// Package scanner contains the time-driven sweeps that run under the
// tick loop.
package scanner

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"

	"warden-bot/model"
	"warden-bot/storage"
	"warden-bot/utils/database"
)

// GuildActions is the slice of the Discord session the isolation code
// needs. *discordgo.Session satisfies it.
type GuildActions interface {
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SweepIsolation scans every guild's active isolation entries and
// releases those whose release time has passed. Errors on a single
// entry are logged and skipped so the rest of the sweep proceeds; a
// failed entry stays in the list and is retried on the next tick.
func SweepIsolation(actions GuildActions, store *storage.GuildStore, auditDB *sqlx.DB, now time.Time) error {
	for _, guildID := range store.GuildIDs() {
		cfg, err := store.GetOrCreate(guildID, "")
		if err != nil {
			log.Printf("Error loading guild config for %s during isolation sweep: %v", guildID, err)
			continue
		}
		if len(cfg.Isolation.ActiveEntries) == 0 {
			continue
		}

		// Iterate over a snapshot since releases mutate the list.
		entries := make([]model.IsolationEntry, len(cfg.Isolation.ActiveEntries))
		copy(entries, cfg.Isolation.ActiveEntries)

		for _, entry := range entries {
			if !now.After(entry.ReleaseAt) {
				continue
			}
			if err := ReleaseEntry(actions, cfg, entry, now, "sweep", auditDB); err != nil {
				log.Printf("Failed to auto-release user %s in guild %s: %v", entry.UserID, guildID, err)
				continue
			}
			if err := store.Save(cfg); err != nil {
				log.Printf("Failed to save guild config for %s after release: %v", guildID, err)
			}
		}
	}
	return nil
}

// ReleaseEntry performs the release of one isolation entry: revoke the
// isolation role, re-grant the snapshotted roles if instructed, remove
// the entry from the config and notify the guild's notification
// channel. The caller persists the updated config. Used by both the
// sweep and the manual release command.
func ReleaseEntry(actions GuildActions, cfg *model.GuildConfig, entry model.IsolationEntry, now time.Time, releasedBy string, auditDB *sqlx.DB) error {
	if err := actions.GuildMemberRoleRemove(cfg.GuildID, entry.UserID, entry.RoleID); err != nil {
		return fmt.Errorf("failed to revoke isolation role %s from user %s: %w", entry.RoleID, entry.UserID, err)
	}

	if entry.ReturnRolesOnRelease {
		for _, roleID := range entry.PriorRoleIDs {
			if err := actions.GuildMemberRoleAdd(cfg.GuildID, entry.UserID, roleID); err != nil {
				// Role may have been deleted since the snapshot was taken.
				log.Printf("Failed to return role %s to user %s in guild %s: %v", roleID, entry.UserID, cfg.GuildID, err)
			}
		}
	}

	cfg.Isolation.RemoveEntry(entry.UserID)

	if cfg.BotNotificationsChannel != "" {
		daysIsolated := now.Sub(entry.CreatedAt).Hours() / 24
		msg := fmt.Sprintf(
			"Released user <@%s> from isolation at channel <#%s>. The user was isolated for `%.2f` days.\nWere the revoked roles returned? `%t`. The user was isolated for: `%s`.",
			entry.UserID, entry.ChannelID, daysIsolated, entry.ReturnRolesOnRelease, entry.Reason)
		if _, err := actions.ChannelMessageSend(cfg.BotNotificationsChannel, msg); err != nil {
			log.Printf("Failed to send release notification for guild %s: %v", cfg.GuildID, err)
		}
	}

	if auditDB != nil {
		if err := database.MarkIsolationReleased(auditDB, cfg.GuildID, entry.UserID, now.Unix(), releasedBy, entry.ReturnRolesOnRelease); err != nil {
			log.Printf("Failed to update isolation audit record for user %s: %v", entry.UserID, err)
		}
	}

	return nil
}
