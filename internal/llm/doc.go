// Package llm provides the completion service used to phrase scan results.
// It supports Gemini, OpenAI and Anthropic over plain HTTP, with rate limiting,
// retries, and a cooldown window entered after the provider rate-limits us.
package llm
