package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// User is the signed-in person a survey is submitted for.
type User struct {
	ID          string
	DisplayName string
	Email       string
	PhotoURL    string
}

// Identity is what a front end knows about a person before sign-in.
type Identity struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// Provider is the capability the survey needs from authentication.
type Provider interface {
	CurrentUser(ctx context.Context) *User
	Loading() bool
	SignIn(ctx context.Context, id Identity) (*User, error)
	SignOut(ctx context.Context) error
}

// ErrNotAllowed is wrapped by Error when an identity is not on the allow-list.
var ErrNotAllowed = errors.New("user is not allowed to take the survey")

// Error is a recoverable sign-in or sign-out failure.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("%s failed: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Registry hands out one Provider per chat, backed by an allow-list of
// Telegram user ids. An empty allow-list admits everyone.
type Registry struct {
	allowed map[int64]struct{}

	mu        sync.Mutex
	sessions  map[int64]*User
	onSignOut []func(chatID int64)
}

// NewRegistry creates a Registry for the given allowed Telegram ids.
func NewRegistry(allowedIDs []int64) *Registry {
	allowed := make(map[int64]struct{}, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = struct{}{}
	}
	return &Registry{
		allowed:  allowed,
		sessions: make(map[int64]*User),
	}
}

// OnSignOut registers a hook run after a chat signs out.
func (r *Registry) OnSignOut(fn func(chatID int64)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSignOut = append(r.onSignOut, fn)
}

// Allowed reports whether a Telegram id may sign in.
func (r *Registry) Allowed(telegramID int64) bool {
	if len(r.allowed) == 0 {
		return true
	}
	_, ok := r.allowed[telegramID]
	return ok
}

// ForChat returns the Provider for a chat.
func (r *Registry) ForChat(chatID int64) Provider {
	return &chatProvider{registry: r, chatID: chatID}
}

type chatProvider struct {
	registry *Registry
	chatID   int64
}

func (p *chatProvider) CurrentUser(ctx context.Context) *User {
	p.registry.mu.Lock()
	defer p.registry.mu.Unlock()
	return p.registry.sessions[p.chatID]
}

// Loading is always false: sessions are held in memory and need no restore.
func (p *chatProvider) Loading() bool { return false }

func (p *chatProvider) SignIn(ctx context.Context, id Identity) (*User, error) {
	if !p.registry.Allowed(id.TelegramID) {
		return nil, &Error{Op: "sign in", Err: fmt.Errorf("%w: %d", ErrNotAllowed, id.TelegramID)}
	}
	u := &User{
		ID:          strconv.FormatInt(id.TelegramID, 10),
		DisplayName: displayName(id),
	}

	p.registry.mu.Lock()
	defer p.registry.mu.Unlock()
	if existing, ok := p.registry.sessions[p.chatID]; ok && existing.ID == u.ID {
		return existing, nil
	}
	p.registry.sessions[p.chatID] = u
	return u, nil
}

func (p *chatProvider) SignOut(ctx context.Context) error {
	p.registry.mu.Lock()
	_, ok := p.registry.sessions[p.chatID]
	delete(p.registry.sessions, p.chatID)
	hooks := append([]func(int64){}, p.registry.onSignOut...)
	p.registry.mu.Unlock()

	if !ok {
		return &Error{Op: "sign out", Err: errors.New("not signed in")}
	}
	for _, fn := range hooks {
		fn(p.chatID)
	}
	return nil
}

func displayName(id Identity) string {
	name := id.FirstName
	if id.LastName != "" {
		if name != "" {
			name += " "
		}
		name += id.LastName
	}
	if name == "" {
		name = id.Username
	}
	return name
}
