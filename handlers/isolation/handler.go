package isolation

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"warden-bot/bot"
	"warden-bot/model"
	"warden-bot/scanner"
	"warden-bot/utils"
	"warden-bot/utils/database"
)

func HandleIsolationCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "isolate":
		handleIsolate(s, i, b, sub.Options)
	case "release":
		handleRelease(s, i, b, sub.Options)
	case "pair_add":
		handlePairAdd(s, i, b, sub.Options)
	case "history":
		handleHistory(s, i, b, sub.Options)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func handleIsolate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(options)
	targetUser := opts["user"].UserValue(s)
	durationStr := opts["duration"].StringValue()
	returnRoles := opts["return_roles"].BoolValue()
	reason := opts["reason"].StringValue()

	duration, err := utils.ParseDuration(durationStr)
	if err != nil || duration <= 0 {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Invalid duration `%s`.", durationStr))
		return
	}

	cfg, err := b.Store.GetOrCreate(i.GuildID, "")
	if err != nil {
		log.Printf("Error loading guild config for %s: %v", i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to load the server configuration.")
		return
	}

	if _, active := cfg.Isolation.EntryFor(targetUser.ID); active {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("The user %s is already isolated.", targetUser.Mention()))
		return
	}

	channelID, roleID, ok := cfg.Isolation.GetFreeOrFirstPair()
	if !ok {
		utils.SendFollowUpError(s, i.Interaction, "No isolation channel-role pairs set, can not isolate.")
		return
	}

	member, err := s.GuildMember(i.GuildID, targetUser.ID)
	if err != nil {
		log.Printf("Error getting member %s in guild %s: %v", targetUser.ID, i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not retrieve member details.")
		return
	}

	// Snapshot and strip the member's roles, then grant the isolation
	// role, as one logical unit.
	priorRoles := make([]string, len(member.Roles))
	copy(priorRoles, member.Roles)
	for _, role := range priorRoles {
		if err := s.GuildMemberRoleRemove(i.GuildID, targetUser.ID, role); err != nil {
			log.Printf("Failed to remove role %s from user %s: %v", role, targetUser.ID, err)
		}
	}
	if err := s.GuildMemberRoleAdd(i.GuildID, targetUser.ID, roleID); err != nil {
		log.Printf("Failed to grant isolation role %s to user %s: %v", roleID, targetUser.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to grant the isolation role.")
		return
	}

	now := time.Now().UTC()
	entry := model.IsolationEntry{
		UserID:               targetUser.ID,
		ChannelID:            channelID,
		RoleID:               roleID,
		CreatedAt:            now,
		ReleaseAt:            now.Add(duration),
		Reason:               reason,
		ReturnRolesOnRelease: returnRoles,
		PriorRoleIDs:         priorRoles,
	}
	cfg.Isolation.ActiveEntries = append(cfg.Isolation.ActiveEntries, entry)

	if err := b.Store.Save(cfg); err != nil {
		log.Printf("Error saving guild config for %s: %v", i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to save the isolation entry.")
		return
	}

	if b.AuditDB != nil {
		rec := model.IsolationRecord{
			GuildID:     i.GuildID,
			UserID:      targetUser.ID,
			ModeratorID: i.Member.User.ID,
			ChannelID:   channelID,
			Reason:      reason,
			CreatedAt:   now.Unix(),
			ReleaseAt:   entry.ReleaseAt.Unix(),
		}
		if err := database.AddIsolationRecord(b.AuditDB, rec); err != nil {
			log.Printf("Failed to write isolation audit record for user %s: %v", targetUser.ID, err)
		}
	}

	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf(
		"Isolated %s at channel <#%s> for `%s`. Removed %d role(s).\nThe user will be released on: <t:%d>. Will the revoked roles be given back on release? `%t`.",
		targetUser.Mention(), channelID, durationStr, len(priorRoles), entry.ReleaseAt.Unix(), returnRoles))
}

func handleRelease(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(options)
	targetUser := opts["user"].UserValue(s)

	cfg, err := b.Store.GetOrCreate(i.GuildID, "")
	if err != nil {
		log.Printf("Error loading guild config for %s: %v", i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to load the server configuration.")
		return
	}

	entry, ok := cfg.Isolation.EntryFor(targetUser.ID)
	if !ok {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("User %s is not currently isolated.", targetUser.Mention()))
		return
	}

	if err := scanner.ReleaseEntry(s, cfg, entry, time.Now().UTC(), i.Member.User.ID, b.AuditDB); err != nil {
		log.Printf("Failed to release user %s in guild %s: %v", targetUser.ID, i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to release the user.")
		return
	}

	if err := b.Store.Save(cfg); err != nil {
		log.Printf("Error saving guild config for %s: %v", i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to save the server configuration.")
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Released %s from isolation.", targetUser.Mention()))
}

func handlePairAdd(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	channel := opts["channel"].ChannelValue(s)
	role := opts["role"].RoleValue(s, i.GuildID)

	cfg, err := b.Store.GetOrCreate(i.GuildID, "")
	if err != nil {
		log.Printf("Error loading guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to load the server configuration.")
		return
	}

	if existing, ok := cfg.Isolation.ChannelRolePairs[channel.ID]; ok && existing == role.ID {
		utils.SendErrorResponse(s, i, fmt.Sprintf("An isolation pair for <#%s> with <@&%s> already exists.", channel.ID, role.ID))
		return
	}
	if cfg.Isolation.ChannelRolePairs == nil {
		cfg.Isolation.ChannelRolePairs = make(map[string]string)
	}
	cfg.Isolation.ChannelRolePairs[channel.ID] = role.ID

	if err := b.Store.Save(cfg); err != nil {
		log.Printf("Error saving guild config for %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to save the server configuration.")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("An isolation channel-role pair for <#%s> with <@&%s> has been added.", channel.ID, role.ID))
}

func handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	targetUser := opts["user"].UserValue(s)

	if b.AuditDB == nil {
		utils.SendErrorResponse(s, i, "The isolation audit log is not available.")
		return
	}

	records, err := database.GetIsolationRecordsByUser(b.AuditDB, i.GuildID, targetUser.ID)
	if err != nil {
		log.Printf("Error fetching isolation history for user %s: %v", targetUser.ID, err)
		utils.SendErrorResponse(s, i, "Failed to fetch the isolation history.")
		return
	}
	if len(records) == 0 {
		utils.SendErrorResponse(s, i, fmt.Sprintf("User %s has no isolation history.", targetUser.Mention()))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Isolation history for %s (%d):**\n", targetUser.Mention(), len(records)))
	for _, rec := range records {
		status := "active"
		if rec.ReleasedAt > 0 {
			releasedBy := rec.ReleasedBy
			if releasedBy == "sweep" {
				releasedBy = "auto-release"
			} else {
				releasedBy = fmt.Sprintf("<@%s>", releasedBy)
			}
			status = fmt.Sprintf("released <t:%d> by %s", rec.ReleasedAt, releasedBy)
		}
		sb.WriteString(fmt.Sprintf("- <t:%d> in <#%s>: `%s` (%s)\n", rec.CreatedAt, rec.ChannelID, rec.Reason, status))
	}
	utils.SendPublicResponse(s, i, sb.String())
}
