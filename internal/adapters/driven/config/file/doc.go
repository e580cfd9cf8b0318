// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - LoadDotEnv: credentials from .env files
//   - Watcher: reloads the ConfigStore when the file changes
package file
