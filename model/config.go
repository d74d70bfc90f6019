package model

// Config holds the application-level configuration loaded at startup.
type Config struct {
	BotToken       string
	AppID          string
	LogChannelID   string
	TickIntervalMS int
	DataDir        string
	AuditDBPath    string
}
