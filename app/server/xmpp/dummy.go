package xmpp

import (
	"context"
	"sync"

	"github.com/alexedwards/argon2id"
)

// Dummy 在内存中保存账户，只用于开发与测试
type Dummy struct {
	mu    sync.RWMutex
	users map[string]string // jid -> argon2id hash
}

var _ Backend = (*Dummy)(nil)

func NewDummy() *Dummy {
	return &Dummy{users: make(map[string]string)}
}

func jid(node, domain string) string {
	return node + "@" + domain
}

func (d *Dummy) UserExists(_ context.Context, node, domain string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.users[jid(node, domain)]
	return ok, nil
}

func (d *Dummy) CreateUser(_ context.Context, node, domain, password, _ string) error {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return &BackendError{Op: "create_user", Err: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[jid(node, domain)]; ok {
		return ErrUserExists
	}
	d.users[jid(node, domain)] = hash
	return nil
}

func (d *Dummy) CheckPassword(_ context.Context, node, domain, password string) (bool, error) {
	d.mu.RLock()
	hash, ok := d.users[jid(node, domain)]
	d.mu.RUnlock()
	if !ok {
		return false, nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, &BackendError{Op: "check_password", Err: err}
	}
	return match, nil
}

func (d *Dummy) SetPassword(_ context.Context, node, domain, password string) error {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return &BackendError{Op: "set_password", Err: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.users[jid(node, domain)] = hash
	return nil
}

func (d *Dummy) RemoveUser(_ context.Context, node, domain string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.users, jid(node, domain))
	return nil
}
