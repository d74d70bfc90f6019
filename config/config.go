package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"warden-bot/model"
)

// Load reads the application configuration from the environment and an
// optional settings file. BOT_TOKEN and APP_ID are required; everything
// else has a sensible default.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./data")

	v.SetDefault("tick_interval_ms", 60000)
	v.SetDefault("data_dir", "data")

	v.AutomaticEnv()
	if err := v.BindEnv("bot_token"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("app_id"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("log_channel_id"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("tick_interval_ms"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("data_dir"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
		log.Println("Info: settings.yaml not found, relying on environment variables and defaults")
	}

	token := v.GetString("bot_token")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}

	appID := v.GetString("app_id")
	if appID == "" {
		return nil, fmt.Errorf("APP_ID environment variable not set")
	}

	logChannelID := v.GetString("log_channel_id")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, startup logging to Discord will be disabled")
	}

	dataDir := v.GetString("data_dir")

	cfg := &model.Config{
		BotToken:       token,
		AppID:          appID,
		LogChannelID:   logChannelID,
		TickIntervalMS: v.GetInt("tick_interval_ms"),
		DataDir:        dataDir,
		AuditDBPath:    filepath.Join(dataDir, "isolation_records.db"),
	}

	return cfg, nil
}
