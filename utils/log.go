package utils

import (
	"github.com/bwmarrin/discordgo"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func sendLog(s *discordgo.Session, channelID string, level LogLevel, module, operation, extraInfo string) error {
	embed := &discordgo.MessageEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module},
			{Name: "Operation", Value: operation},
			{Name: "Details", Value: extraInfo},
		},
	}
	_, err := s.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func LogInfo(s *discordgo.Session, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Info, module, operation, extraInfo)
}

func LogWarn(s *discordgo.Session, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Warn, module, operation, extraInfo)
}

func LogError(s *discordgo.Session, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Error, module, operation, extraInfo)
}
