package chatseal

import (
	"context"
	"sync"
)

// Directory is the workspace membership directory: who belongs to a
// workspace and which chats exist in it. The surrounding application owns
// this data; the pipeline only reads it for auto-provisioning and grant
// synchronization.
type Directory interface {
	// ListMembers returns the user IDs of a workspace's current members.
	ListMembers(ctx context.Context, workspaceID string) ([]string, error)

	// ListChats returns the chat IDs that exist in a workspace.
	ListChats(ctx context.Context, workspaceID string) ([]string, error)
}

// StaticDirectory is an in-memory Directory for tests and single-process
// deployments.
type StaticDirectory struct {
	mu      sync.RWMutex
	members map[string][]string // workspaceID -> userIDs
	chats   map[string][]string // workspaceID -> chatIDs
}

// NewStaticDirectory creates an empty static directory.
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		members: make(map[string][]string),
		chats:   make(map[string][]string),
	}
}

// AddMember adds a user to a workspace. Adding an existing member is a no-op.
func (d *StaticDirectory) AddMember(workspaceID, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range d.members[workspaceID] {
		if id == userID {
			return
		}
	}
	d.members[workspaceID] = append(d.members[workspaceID], userID)
}

// AddChat registers a chat in a workspace. Adding an existing chat is a no-op.
func (d *StaticDirectory) AddChat(workspaceID, chatID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range d.chats[workspaceID] {
		if id == chatID {
			return
		}
	}
	d.chats[workspaceID] = append(d.chats[workspaceID], chatID)
}

// ListMembers returns the user IDs of a workspace's members.
func (d *StaticDirectory) ListMembers(ctx context.Context, workspaceID string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.members[workspaceID]))
	copy(out, d.members[workspaceID])
	return out, nil
}

// ListChats returns the chat IDs in a workspace.
func (d *StaticDirectory) ListChats(ctx context.Context, workspaceID string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.chats[workspaceID]))
	copy(out, d.chats[workspaceID])
	return out, nil
}
