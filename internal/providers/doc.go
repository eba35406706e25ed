// Package providers implements the scan.Analyzer interface for each
// supported AI backend.
//
// Supported providers: OpenAI (GPT), Google (Gemini), Groq, and a
// self-hosted custom server reached over plain HTTP.
//
// All providers share a common retry helper with exponential back-off that
// retries transient failures (rate limits, 5xx responses, network errors)
// and never retries authentication errors. Base URLs are injected through
// [Config] so that tests can redirect calls to local httptest servers.
//
// Hosted variants parse semi-structured model output with [ExtractFindings];
// the custom server already returns a near-normalized JSON array. Use [New]
// to obtain an analyzer from a [Config].
package providers
