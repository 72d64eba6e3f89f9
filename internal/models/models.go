package models

import "time"

// ChatMessage is a single entry of a chat transcript. Messages are never
// modified once appended.
type ChatMessage struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chat_id"`
	Text        string    `json:"text"`
	IsBot       bool      `json:"is_bot"`
	Suggestions []string  `json:"suggestions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Response is the result of matching user input against the rule table
type Response struct {
	Rule        string   `json:"rule"`
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions"`
}
