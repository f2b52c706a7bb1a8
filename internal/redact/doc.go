// Package redact scrubs secrets from review tool output before it is
// embedded in a hook decision. Review excerpts quote diff hunks, and a diff
// that touches credentials would otherwise echo them into the agent
// transcript through the deny reason.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private key blocks, AWS access key IDs and secret access keys,
// bearer tokens, and provider-specific tokens (Anthropic, OpenAI, GitHub,
// Slack).
package redact
