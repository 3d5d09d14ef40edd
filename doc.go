// Package chatseal implements the client-side encryption pipeline for
// workspace chat: per-user key unlock, chat content key provisioning and
// grants, message encryption and decryption with legacy fallback, and the
// display update queue that keeps rendered text consistent under
// concurrent decrypts.
//
// Basic usage:
//
//	client, err := chatseal.New(chatseal.WithWorkspace("ws-1"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Unlock(ctx, "alice", "s3cret"); err != nil {
//		log.Fatal(err)
//	}
//
//	msg, err := client.SendMessage(ctx, "chat-1", "hello")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	text, err := client.DecryptMessage(ctx, msg)
//
// All key material lives in the unlocked session and the in-memory key
// cache; nothing secret is ever written to durable storage except sealed
// or wrapped forms. Locking the session wipes the master key and clears
// the cache.
package chatseal
