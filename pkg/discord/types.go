package discord

import (
	"fmt"
	"strconv"
)

// discordUser is the wire shape of a Discord user object.
type discordUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	GlobalName    string `json:"global_name"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
}

// displayName renders the classic name#discriminator form when the
// account still has a discriminator, otherwise the bare username.
func (u discordUser) displayName() string {
	if u.Discriminator != "" && u.Discriminator != "0" {
		return fmt.Sprintf("%s#%s", u.Username, u.Discriminator)
	}
	return u.Username
}

// avatarURL returns the CDN URL for the user's avatar, falling back to
// one of the default embed avatars.
func (u discordUser) avatarURL() string {
	if u.Avatar != "" {
		return fmt.Sprintf("%s/avatars/%s/%s.png", cdnBaseURL, u.ID, u.Avatar)
	}
	n, _ := strconv.Atoi(u.Discriminator)
	return fmt.Sprintf("%s/embed/avatars/%d.png", cdnBaseURL, n%5)
}

// dmChannel is a DM or group DM channel from users/@me/channels.
type dmChannel struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Recipients    []discordUser `json:"recipients"`
	LastMessageID string        `json:"last_message_id"`
}

// guild is a guild summary from users/@me/guilds.
type guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (g guild) iconURL() string {
	if g.Icon == "" {
		return ""
	}
	return fmt.Sprintf("%s/icons/%s/%s.png", cdnBaseURL, g.ID, g.Icon)
}

// Guild channel types we care about.
const (
	channelTypeText     = 0
	channelTypeVoice    = 2
	channelTypeCategory = 4
)

// guildChannel is one entry of guilds/{id}/channels.
type guildChannel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	Position int    `json:"position"`
	ParentID string `json:"parent_id"`
}

// resultAttachment is an attachment on a search result message.
type resultAttachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// resultMessage is one message within a search match group.
type resultMessage struct {
	ID          string             `json:"id"`
	ChannelID   string             `json:"channel_id"`
	Hit         bool               `json:"hit"`
	Content     string             `json:"content"`
	Timestamp   string             `json:"timestamp"`
	Author      discordUser        `json:"author"`
	Attachments []resultAttachment `json:"attachments"`
}

// SearchResults is the payload of the message search endpoint. Each
// entry of Messages is a match group: the hit plus its context; exactly
// one element is flagged as the actual hit.
type SearchResults struct {
	RetryAfter      float64           `json:"retry_after"`
	DocumentIndexed *int64            `json:"document_indexed"`
	TotalResults    int               `json:"total_results"`
	Messages        [][]resultMessage `json:"messages"`
}
