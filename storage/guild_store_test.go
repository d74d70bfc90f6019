package storage

import (
	"testing"
	"time"

	"warden-bot/model"
)

func TestGetOrCreatePersistsNewConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store, err := NewGuildStore(dir)
	if err != nil {
		t.Fatalf("NewGuildStore error: %v", err)
	}

	cfg, err := store.GetOrCreate("g1", "Test Guild")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if cfg.GuildID != "g1" || cfg.GuildName != "Test Guild" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	ids := store.GuildIDs()
	if len(ids) != 1 || ids[0] != "g1" {
		t.Fatalf("GuildIDs = %v, want [g1]", ids)
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store, err := NewGuildStore(dir)
	if err != nil {
		t.Fatalf("NewGuildStore error: %v", err)
	}

	cfg, err := store.GetOrCreate("g1", "Test Guild")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	cfg.BotNotificationsChannel = "chan-1"

	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	reminder, err := model.NewTimedReminder("launch", "we are live", true, model.DateFormatWeekly, "fr-18", now)
	if err != nil {
		t.Fatalf("NewTimedReminder error: %v", err)
	}
	cfg.TimedReminders = append(cfg.TimedReminders, reminder)
	cfg.Isolation.ChannelRolePairs = map[string]string{"iso-chan": "iso-role"}
	cfg.Isolation.ActiveEntries = append(cfg.Isolation.ActiveEntries, model.IsolationEntry{
		UserID:       "u1",
		ChannelID:    "iso-chan",
		RoleID:       "iso-role",
		CreatedAt:    now,
		ReleaseAt:    now.Add(24 * time.Hour),
		Reason:       "spam",
		PriorRoleIDs: []string{"r1", "r2"},
	})

	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// A fresh store instance must read everything back from disk.
	reloadedStore, err := NewGuildStore(dir)
	if err != nil {
		t.Fatalf("NewGuildStore error: %v", err)
	}
	reloaded, err := reloadedStore.GetOrCreate("g1", "")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	if reloaded.BotNotificationsChannel != "chan-1" {
		t.Fatalf("BotNotificationsChannel = %q, want chan-1", reloaded.BotNotificationsChannel)
	}
	got, ok := reloaded.ReminderByName("launch")
	if !ok {
		t.Fatal("reminder missing after reload")
	}
	if got.Expiration != reminder.Expiration || !got.Repeat || got.DateSpec != "fr-18" {
		t.Fatalf("reloaded reminder differs: %+v", got)
	}
	if len(reloaded.Isolation.ActiveEntries) != 1 {
		t.Fatalf("isolation entries = %d, want 1", len(reloaded.Isolation.ActiveEntries))
	}
	entry := reloaded.Isolation.ActiveEntries[0]
	if entry.UserID != "u1" || len(entry.PriorRoleIDs) != 2 {
		t.Fatalf("reloaded entry differs: %+v", entry)
	}
	if reloaded.Isolation.ChannelRolePairs["iso-chan"] != "iso-role" {
		t.Fatalf("channel-role pairs differ: %v", reloaded.Isolation.ChannelRolePairs)
	}
}

func TestGetOrCreateReturnsCachedPointer(t *testing.T) {
	t.Parallel()
	store, err := NewGuildStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuildStore error: %v", err)
	}

	first, err := store.GetOrCreate("g1", "Test Guild")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	second, err := store.GetOrCreate("g1", "")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if first != second {
		t.Fatal("GetOrCreate returned different pointers for the same guild")
	}
}
