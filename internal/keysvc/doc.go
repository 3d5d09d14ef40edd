// Package keysvc implements the local crypto service: the trusted boundary
// the pipeline calls for primitive key operations. Every operation is a
// stateless request/response call; session state (unlock status, cached
// keys) lives with the caller, never here.
//
// The service owns the durable key-management records — user crypto
// profiles, chat key records, and grants — through a persist.Store. Raw
// master keys and content keys pass through call arguments and results
// only; they are never written to the store.
//
// # Error Handling
//
// Operations never panic across the boundary. Failures map to the
// package's sentinel errors:
//
//   - [ErrProfileNotFound]: no crypto profile exists for the user.
//   - [ErrChatKeyNotFound]: no chat key record exists for the chat.
//   - [ErrGrantNotFound]: the user holds no grant at that key version.
//   - [ErrDecryptFailed]: an AEAD open failed; the key was wrong.
//   - [ErrUnavailable]: the backing store failed; retryable.
//
// Use errors.Is to check for specific conditions.
package keysvc
