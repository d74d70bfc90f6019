package model

import (
	"sort"
	"time"
)

// IsolationEntry records a temporarily role-revoked user. Entries are
// immutable snapshots; release removes the entry rather than mutating it.
type IsolationEntry struct {
	UserID               string    `json:"user_id"`
	ChannelID            string    `json:"channel_id"`
	RoleID               string    `json:"role_id"`
	CreatedAt            time.Time `json:"created_at"`
	ReleaseAt            time.Time `json:"release_at"`
	Reason               string    `json:"reason"`
	ReturnRolesOnRelease bool      `json:"return_roles_on_release"`
	PriorRoleIDs         []string  `json:"prior_role_ids"`
}

// IsolationConfig holds a guild's isolation channel-role pairs and the
// currently active entries.
type IsolationConfig struct {
	ChannelRolePairs map[string]string `json:"channel_role_pairs"` // channel ID -> role ID
	ActiveEntries    []IsolationEntry  `json:"active_entries"`
}

// GetFreeOrFirstPair returns an isolation channel-role pair that has no
// active entry, or the first configured pair if all are busy. The
// second return is false when no pairs are configured.
func (c *IsolationConfig) GetFreeOrFirstPair() (channelID, roleID string, ok bool) {
	if len(c.ChannelRolePairs) == 0 {
		return "", "", false
	}

	channels := make([]string, 0, len(c.ChannelRolePairs))
	for ch := range c.ChannelRolePairs {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	for _, ch := range channels {
		busy := false
		for _, entry := range c.ActiveEntries {
			if entry.ChannelID == ch {
				busy = true
				break
			}
		}
		if !busy {
			return ch, c.ChannelRolePairs[ch], true
		}
	}

	// All isolation channels are busy, fall back to the first one.
	return channels[0], c.ChannelRolePairs[channels[0]], true
}

// EntryFor returns the active entry for the given user, if any.
func (c *IsolationConfig) EntryFor(userID string) (IsolationEntry, bool) {
	for _, entry := range c.ActiveEntries {
		if entry.UserID == userID {
			return entry, true
		}
	}
	return IsolationEntry{}, false
}

// RemoveEntry deletes the active entry for the given user and reports
// whether one was removed.
func (c *IsolationConfig) RemoveEntry(userID string) bool {
	for idx, entry := range c.ActiveEntries {
		if entry.UserID == userID {
			c.ActiveEntries = append(c.ActiveEntries[:idx], c.ActiveEntries[idx+1:]...)
			return true
		}
	}
	return false
}
