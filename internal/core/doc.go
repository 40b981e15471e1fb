// Package core provides the vault engine.
//
// Every hidden item is an Entry whose Concealment says how it was hidden:
//   - FastHide: the item was moved into the vault under a random name
//   - Advanced: the file was sealed with AES-256-GCM into "<name>.enc"
//
// Engine operations:
//   - Hide: move or seal one item and record it in the manifest
//   - Unhide: restore an item to its original path and drop the entry
//   - Open: stage a plaintext copy and hand it to the viewer
//   - Delete: destroy the vault object and drop the entry
//   - Check/Prune: detect and repair manifest/vault divergence
//   - Compare: diff hidden content against the original location
//
// The manifest is saved after every membership change. A transform whose
// manifest save fails is rolled back where possible and reported as
// ErrPersistenceFailed.
package core
