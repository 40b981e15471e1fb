// Package storage provides cloak's two persistence layers.
//
// Settings live in a small BBolt database outside the vault:
//   - config bucket: security level, setup-complete flag, timestamps
//
// The manifest lives inside the vault root as manifest.json. It is the
// durable list of hidden items and is always replaced atomically
// (write temp file, fsync, rename, fsync directory) so a crash can never
// leave a half-written manifest behind.
package storage
