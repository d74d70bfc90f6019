package scanner

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"warden-bot/model"
	"warden-bot/storage"
)

var base = time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

type roleOp struct {
	guildID, userID, roleID string
}

type fakeActions struct {
	removed  []roleOp
	added    []roleOp
	messages []string
	failFor  map[string]error // userID -> error on role remove
}

func (f *fakeActions) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	if err, ok := f.failFor[userID]; ok {
		return err
	}
	f.removed = append(f.removed, roleOp{guildID, userID, roleID})
	return nil
}

func (f *fakeActions) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.added = append(f.added, roleOp{guildID, userID, roleID})
	return nil
}

func (f *fakeActions) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.messages = append(f.messages, content)
	return &discordgo.Message{}, nil
}

func newGuildWithEntries(t *testing.T, store *storage.GuildStore, guildID string, entries ...model.IsolationEntry) *model.GuildConfig {
	t.Helper()
	cfg, err := store.GetOrCreate(guildID, "Test Guild")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	cfg.BotNotificationsChannel = "notify-channel"
	cfg.Isolation.ActiveEntries = append(cfg.Isolation.ActiveEntries, entries...)
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	return cfg
}

func expiredEntry(userID string, returnRoles bool, priorRoles ...string) model.IsolationEntry {
	return model.IsolationEntry{
		UserID:               userID,
		ChannelID:            "iso-channel",
		RoleID:               "iso-role",
		CreatedAt:            base.Add(-72 * time.Hour),
		ReleaseAt:            base.Add(-time.Minute),
		Reason:               "being unpleasant",
		ReturnRolesOnRelease: returnRoles,
		PriorRoleIDs:         priorRoles,
	}
}

func TestSweepReleasesExpiredEntry(t *testing.T) {
	t.Parallel()
	store, err := storage.NewGuildStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuildStore error: %v", err)
	}
	actions := &fakeActions{}

	cfg := newGuildWithEntries(t, store, "g1", expiredEntry("u1", true, "r1", "r2"))

	if err := SweepIsolation(actions, store, nil, base); err != nil {
		t.Fatalf("SweepIsolation error: %v", err)
	}

	if len(cfg.Isolation.ActiveEntries) != 0 {
		t.Fatalf("entry still active after sweep")
	}
	if len(actions.removed) != 1 || actions.removed[0].roleID != "iso-role" {
		t.Fatalf("isolation role revocations = %v, want one iso-role removal", actions.removed)
	}
	if len(actions.added) != 2 {
		t.Fatalf("re-granted %d roles, want 2", len(actions.added))
	}
	if len(actions.messages) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(actions.messages))
	}

	// A second sweep is a no-op: roles are re-granted exactly once.
	if err := SweepIsolation(actions, store, nil, base.Add(time.Minute)); err != nil {
		t.Fatalf("SweepIsolation error: %v", err)
	}
	if len(actions.added) != 2 {
		t.Fatalf("roles re-granted again on second sweep: %v", actions.added)
	}
}

func TestSweepSkipsRolesWhenNotRequested(t *testing.T) {
	t.Parallel()
	store, err := storage.NewGuildStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuildStore error: %v", err)
	}
	actions := &fakeActions{}

	newGuildWithEntries(t, store, "g1", expiredEntry("u1", false, "r1", "r2"))

	if err := SweepIsolation(actions, store, nil, base); err != nil {
		t.Fatalf("SweepIsolation error: %v", err)
	}
	if len(actions.added) != 0 {
		t.Fatalf("roles re-granted despite return_roles=false: %v", actions.added)
	}
}

func TestSweepLeavesUnexpiredEntries(t *testing.T) {
	t.Parallel()
	store, err := storage.NewGuildStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuildStore error: %v", err)
	}
	actions := &fakeActions{}

	active := expiredEntry("u2", true, "r1")
	active.ReleaseAt = base.Add(time.Hour)
	cfg := newGuildWithEntries(t, store, "g1", expiredEntry("u1", true, "r1"), active)

	if err := SweepIsolation(actions, store, nil, base); err != nil {
		t.Fatalf("SweepIsolation error: %v", err)
	}

	if len(cfg.Isolation.ActiveEntries) != 1 {
		t.Fatalf("active entries = %d, want 1", len(cfg.Isolation.ActiveEntries))
	}
	if cfg.Isolation.ActiveEntries[0].UserID != "u2" {
		t.Fatalf("wrong entry released: %v", cfg.Isolation.ActiveEntries)
	}
}

func TestSweepToleratesPerEntryFailures(t *testing.T) {
	t.Parallel()
	store, err := storage.NewGuildStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuildStore error: %v", err)
	}
	actions := &fakeActions{failFor: map[string]error{"u1": errors.New("member left the guild")}}

	// The failing entry must be confined to its own channel so both
	// users can be released independently.
	broken := expiredEntry("u1", true, "r1")
	healthy := expiredEntry("u2", true, "r9")
	healthy.ChannelID = "iso-channel-2"
	cfg := newGuildWithEntries(t, store, "g1", broken, healthy)

	if err := SweepIsolation(actions, store, nil, base); err != nil {
		t.Fatalf("SweepIsolation error: %v", err)
	}

	// The broken entry stays for a retry next tick; the healthy one is
	// released despite the earlier failure.
	if len(cfg.Isolation.ActiveEntries) != 1 {
		t.Fatalf("active entries = %d, want 1", len(cfg.Isolation.ActiveEntries))
	}
	if cfg.Isolation.ActiveEntries[0].UserID != "u1" {
		t.Fatalf("failing entry was removed: %v", cfg.Isolation.ActiveEntries)
	}
	if len(actions.added) != 1 || actions.added[0].roleID != "r9" {
		t.Fatalf("role re-grants = %v, want just r9 for u2", actions.added)
	}
}

func TestReleaseEntryNotifiesAndRemoves(t *testing.T) {
	t.Parallel()
	store, err := storage.NewGuildStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuildStore error: %v", err)
	}
	actions := &fakeActions{}
	entry := expiredEntry("u1", true, "r1")
	cfg := newGuildWithEntries(t, store, "g1", entry)

	if err := ReleaseEntry(actions, cfg, entry, base, "moderator-1", nil); err != nil {
		t.Fatalf("ReleaseEntry error: %v", err)
	}
	if len(cfg.Isolation.ActiveEntries) != 0 {
		t.Fatal("entry still active after release")
	}
	if len(actions.messages) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(actions.messages))
	}
}
