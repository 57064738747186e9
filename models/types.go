// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Drink limits per command invocation
const (
	MaxCoffeeAdd      = 5
	MaxCoffeeSubtract = 2
	CountDisplaySize  = 5
)

// Slack response_type values
const (
	ResponseEphemeral = "ephemeral"
	ResponseInChannel = "in_channel"
)

// SlashCommand is the parsed form payload Slack posts for a slash command.
type SlashCommand struct {
	Command    string
	Text       string
	UserID     string
	UserName   string
	TeamID     string
	TeamDomain string
}

// Response is the JSON body returned to Slack.
type Response struct {
	ResponseType string  `json:"response_type"`
	Text         string  `json:"text,omitempty"`
	Blocks       []Block `json:"blocks,omitempty"`
}

// Block is a Block Kit layout block. Only section blocks are used.
type Block struct {
	Type string      `json:"type"`
	Text *TextObject `json:"text,omitempty"`
}

type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Ephemeral builds a private plain-text response for the caller.
func Ephemeral(text string) Response {
	return Response{ResponseType: ResponseEphemeral, Text: text}
}

// InChannel builds a response visible to the whole channel.
func InChannel(text string) Response {
	return Response{ResponseType: ResponseInChannel, Text: text}
}

// SectionBlock builds an mrkdwn section block.
func SectionBlock(text string) Block {
	return Block{
		Type: "section",
		Text: &TextObject{Type: "mrkdwn", Text: text},
	}
}

// BlockResponse builds an in-channel Block Kit response.
func BlockResponse(blocks []Block) Response {
	return Response{ResponseType: ResponseInChannel, Blocks: blocks}
}

// GenericFailure is returned for unrecognized commands and for failed
// attempts to identify as admin, so the two are indistinguishable.
func GenericFailure() Response {
	return Ephemeral("I'm afraid I don't understand your command. Take another sip and try again.")
}

// UserTally is a per-user drink count for leaderboard output.
type UserTally struct {
	UserName   string
	DrinkCount int64
}

// UserStats summarizes a user's all-time consumption.
type UserStats struct {
	UserName      string
	ReportingDays int64
	TotalCoffees  int64
	AvgPerDay     float64
}
