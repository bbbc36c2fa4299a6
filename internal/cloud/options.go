// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

// RequestOptions holds the tunable request parameters. Pointer and zero
// valued fields are left out of the request body.
type RequestOptions struct {
	Model            string
	Temperature      *float64
	MaxTokens        int
	TopP             *float64
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Stop             []string
	User             string
}

// DefaultOptions returns the options used when the caller overrides nothing.
func DefaultOptions(model string, temperature float64) RequestOptions {
	return RequestOptions{
		Model:       model,
		Temperature: Float(temperature),
	}
}

// Merge returns o with every field set in override replacing the base value.
func (o RequestOptions) Merge(override RequestOptions) RequestOptions {
	merged := o
	if override.Model != "" {
		merged.Model = override.Model
	}
	if override.Temperature != nil {
		merged.Temperature = override.Temperature
	}
	if override.MaxTokens > 0 {
		merged.MaxTokens = override.MaxTokens
	}
	if override.TopP != nil {
		merged.TopP = override.TopP
	}
	if override.PresencePenalty != nil {
		merged.PresencePenalty = override.PresencePenalty
	}
	if override.FrequencyPenalty != nil {
		merged.FrequencyPenalty = override.FrequencyPenalty
	}
	if len(override.Stop) > 0 {
		merged.Stop = append([]string(nil), override.Stop...)
	}
	if override.User != "" {
		merged.User = override.User
	}
	return merged
}

func (o RequestOptions) request(messages []ChatMessage) chatRequest {
	return chatRequest{
		Model:            o.Model,
		Temperature:      o.Temperature,
		Messages:         messages,
		MaxTokens:        o.MaxTokens,
		TopP:             o.TopP,
		PresencePenalty:  o.PresencePenalty,
		FrequencyPenalty: o.FrequencyPenalty,
		Stop:             o.Stop,
		User:             o.User,
	}
}

// Float returns a pointer to v, for the optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
