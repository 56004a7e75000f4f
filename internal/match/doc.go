// Package match implements the two-phase LLM matching protocol.
//
// A Matcher holds one logical search: a caller-supplied candidate list, the
// searched key/value pair, optional prompt context, and the no-result policy.
// Find issues a chat completion asking the model to pick the most similar
// list item, validates that the pick actually exists in the original list
// (the anti-hallucination guard), and, when the no-result policy is enabled,
// issues a second independent call that scores the pick from 1 to 100 and
// suppresses matches below the configured threshold.
//
// # Guarantees
//
//   - A successful Find always returns one of the original list records,
//     resolved by search-key value, never the object the model echoed.
//   - The confidence call only happens after the match is validated; a score
//     equal to the threshold still returns the record.
//   - Errors carry one of three kinds branchable with errors.Is:
//     ErrConfiguration, ErrInput, ErrAPIResponse.
//
// The package never logs; observability belongs to the caller. A Matcher is
// meant for a single Find per configuration and is not safe for concurrent
// use.
package match
