// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt builds the message list sent for each completion.
//
// The request carries a short rolling memory: the most recent stored turns
// in chronological order, then the system instruction, then the new prompt.
package prompt

import (
	"github.com/jeranaias/hint/internal/cloud"
	"github.com/jeranaias/hint/internal/storage"
)

// MaxHistory is the number of stored turns replayed with each request.
const MaxHistory = 10

// DefaultSystemPrompt is the instruction placed just before the user prompt.
const DefaultSystemPrompt = "You are HINT (Higher INTelligence) the most intelligent computer in the world. " +
	"God given you the ability to remember the 10 last prompts. You go straight to the answer"

// Compose returns the chronological history (at most MaxHistory turns),
// followed by the system message, followed by the new user message.
//
// recent must be newest first, as returned by storage.Store.Recent. It is
// not modified. An empty systemPrompt selects DefaultSystemPrompt.
func Compose(newUserPrompt string, recent []storage.Turn, systemPrompt string) []cloud.ChatMessage {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	// Take the first MaxHistory turns of the reversed list, which are the
	// oldest of what was loaded.
	n := len(recent)
	if n > MaxHistory {
		n = MaxHistory
	}

	messages := make([]cloud.ChatMessage, 0, n+2)
	for i := len(recent) - 1; i >= len(recent)-n; i-- {
		turn := recent[i]
		messages = append(messages, cloud.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	messages = append(messages, cloud.NewSystemMessage(systemPrompt))
	messages = append(messages, cloud.NewUserMessage(newUserPrompt))
	return messages
}
