// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the chat completion client for hint.
//
// The client speaks the OpenAI chat completions wire format. Each call is
// one blocking POST; there are no retries and no streaming.
//
// # Key Types
//
//   - Client: HTTP client for the completion endpoint
//   - ChatMessage: One role/content pair of the request
//   - RequestOptions: Model, temperature and the other tunables
//   - TransportError, RemoteError, MalformedResponseError: failure kinds
//
// # Usage
//
//	client := cloud.NewClient(cloud.ClientConfig{APIKey: key})
//	opts := cloud.DefaultOptions("gpt-4o", 0.7)
//	reply, err := client.Complete(ctx, messages, opts)
//	if errors.Is(err, cloud.ErrAuthFailed) {
//	    // bad or missing OPENAI_API_KEY
//	}
//
// # Security
//
// The API key is sent only in the Authorization header and is never logged.
package cloud
