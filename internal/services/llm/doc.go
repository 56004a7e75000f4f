// Package llm provides a thin client for chat-completion style JSON APIs.
//
// The matcher issues every call through this package: a single POST with a
// bearer Authorization header, a fixed {model, messages, response_format}
// body, and content extracted from choices[0].message.content.
//
// # Response Formats
//
// JSONObjectFormat requests the generic json_object mode. JSONSchemaFormat
// constrains output with a named structured-output schema; the matcher uses
// it for confidence scoring.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive the raw JSON content.
// Client.HealthCheck: verify API key and model availability.
// DecodeJSON: decode model output, tolerating code fences around the payload.
//
// # Error Behaviour
//
// Failed HTTP statuses surface the error.message field of the response body
// when present, otherwise a generic "unable to retrieve error details". The
// client never retries; timeout and cancellation policy belong to the caller.
package llm
