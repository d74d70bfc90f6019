package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"warden-bot/model"
)

// GuildStore persists one GuildConfig per guild as an indented JSON
// file under its directory, with an in-memory cache in front. All tick
// work is serialized through the single tick loop, so the mutex only
// guards against concurrent command handlers.
type GuildStore struct {
	dir   string
	mu    sync.Mutex
	cache map[string]*model.GuildConfig
}

// NewGuildStore creates the backing directory if needed.
func NewGuildStore(dir string) (*GuildStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating guild config directory %s: %w", dir, err)
	}
	return &GuildStore{
		dir:   dir,
		cache: make(map[string]*model.GuildConfig),
	}, nil
}

func (st *GuildStore) configPath(guildID string) string {
	return filepath.Join(st.dir, fmt.Sprintf("%s.json", guildID))
}

// GetOrCreate returns the cached config for the guild, loading it from
// disk or creating a fresh one if none exists yet.
func (st *GuildStore) GetOrCreate(guildID, guildName string) (*model.GuildConfig, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if cfg, ok := st.cache[guildID]; ok {
		return cfg, nil
	}

	filePath := st.configPath(guildID)
	fileData, err := os.ReadFile(filePath)
	if err == nil {
		var cfg model.GuildConfig
		if err := json.Unmarshal(fileData, &cfg); err != nil {
			return nil, fmt.Errorf("error unmarshalling guild config from %s: %w", filePath, err)
		}
		st.cache[guildID] = &cfg
		log.Printf("Loaded guild config for [%s, %s]", cfg.GuildName, guildID)
		return &cfg, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading guild config file %s: %w", filePath, err)
	}

	cfg := &model.GuildConfig{
		GuildID:             guildID,
		GuildName:           guildName,
		ProfileCreationDate: time.Now().UTC(),
		TimedReminders:      make([]*model.TimedReminder, 0),
		Isolation: model.IsolationConfig{
			ChannelRolePairs: make(map[string]string),
			ActiveEntries:    make([]model.IsolationEntry, 0),
		},
	}
	st.cache[guildID] = cfg
	log.Printf("Created a new guild config for [%s, %s]", guildName, guildID)

	if err := st.saveLocked(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk and refreshes the cache entry.
func (st *GuildStore) Save(cfg *model.GuildConfig) error {
	if cfg == nil {
		return fmt.Errorf("cannot save a nil guild config")
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cache[cfg.GuildID] = cfg
	return st.saveLocked(cfg)
}

func (st *GuildStore) saveLocked(cfg *model.GuildConfig) error {
	jsonData, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling guild config for %s: %w", cfg.GuildID, err)
	}
	filePath := st.configPath(cfg.GuildID)
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing guild config to %s: %w", filePath, err)
	}
	return nil
}

// GuildIDs lists every guild known to the store, cached or on disk.
func (st *GuildStore) GuildIDs() []string {
	st.mu.Lock()
	defer st.mu.Unlock()

	seen := make(map[string]struct{}, len(st.cache))
	for id := range st.cache {
		seen[id] = struct{}{}
	}

	entries, err := os.ReadDir(st.dir)
	if err != nil {
		log.Printf("Error listing guild config directory %s: %v", st.dir, err)
	} else {
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			seen[strings.TrimSuffix(name, ".json")] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
