// Package bookshelf bootstraps a catalogue client and store from configuration.
//
// Configuration comes from an optional YAML file, .env.local and the
// BOOKSHELF_* environment variables. BOOKSHELF_API_URL selects the service
// (default http://localhost:9000). BOOKSHELF_RUNTIME_MODE=mock swaps the HTTP
// backend for an in-memory catalogue, optionally seeded from
// BOOKSHELF_MOCK_SEED, which keeps the same API as the HTTP client.
package bookshelf
