package discord

// refreshRequest asks the registration loop to sync a guild's commands.
type refreshRequest struct {
	GuildID string
	// Force ignores the hash cache and re-creates every command.
	Force bool
}

// RequestRefresh queues a command sync for guildID. It never blocks; when the
// queue is full the request is dropped and logged.
func (b *Bot) RequestRefresh(guildID string, force bool) {
	select {
	case b.refresh <- refreshRequest{GuildID: guildID, Force: force}:
	default:
		b.log.Warn().Str("guild", guildID).Msg("command refresh queue full, dropping request")
	}
}
