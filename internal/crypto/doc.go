// Package crypto provides cryptographic operations for cloak.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key held in the OS keyring (see package keystore)
//   - 12-byte random nonce per Seal call
//   - sealed blob layout: nonce || ciphertext || tag
//
// Master password hashing uses Argon2id with:
//   - 16-byte random salt
//   - 64-byte (512-bit) output
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Cipher.Destroy() when done with encryption operations
package crypto
