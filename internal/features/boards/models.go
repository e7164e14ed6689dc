// Package boards implements kudo boards: channels pinned by an admin where
// only recognition messages are allowed.
package boards

// Board is the per-channel recognition policy. At most one per channel;
// created or replaced by an admin, never implicitly deleted.
type Board struct {
	ChannelID int64 `db:"channel_id"`
	GuildID   int64 `db:"guild_id"`
	MinKarma  int   `db:"min_karma"`
}
