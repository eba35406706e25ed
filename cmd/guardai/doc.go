// Guardai is a CLI that scans source code for security issues using AI
// providers.
//
// It sends file contents to a hosted model (OpenAI, Gemini, Groq) or a
// self-hosted analysis server, normalizes the responses into findings, and
// emits reports with deterministic exit codes suitable for CI gating and
// git hooks.
//
// Usage:
//
//	guardai scan dir [path]           # scan a directory tree
//	guardai scan changes              # scan files changed in the working tree
//	guardai scan pr <number>          # scan the files changed in a GitHub PR
//	guardai config init               # create a default config file
//	guardai models doctor             # validate provider credentials
//	guardai hook install              # install a pre-commit hook
//
// See https://github.com/guardai/guardai for full documentation.
package main
