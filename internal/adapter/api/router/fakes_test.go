package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"giveget/internal/domain/entity"
	"giveget/internal/domain/repository"
	"giveget/internal/domain/service"
)

type memUser struct {
	uid      string
	email    string
	password string
	deleted  bool
}

// memIdentity doubles as identity backend and bearer verifier.
type memIdentity struct {
	mu              sync.Mutex
	byEmail         map[string]*memUser
	byToken         map[string]*memUser
	seq             int
	requireRecent   bool
	deletedAccounts []string
}

func newMemIdentity() *memIdentity {
	return &memIdentity{
		byEmail: make(map[string]*memUser),
		byToken: make(map[string]*memUser),
	}
}

func (m *memIdentity) issue(u *memUser) *service.Credential {
	m.seq++
	token := fmt.Sprintf("tok-%s-%d", u.uid, m.seq)
	m.byToken[token] = u
	return &service.Credential{UID: u.uid, Email: u.email, IDToken: token, IssuedAt: time.Now()}
}

func (m *memIdentity) SignUp(_ context.Context, email, password, _ string) (*service.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[email]; ok {
		return nil, service.ErrEmailExists
	}
	u := &memUser{uid: fmt.Sprintf("u%d", len(m.byEmail)+1), email: email, password: password}
	m.byEmail[email] = u
	return m.issue(u), nil
}

func (m *memIdentity) SignIn(_ context.Context, email, password string) (*service.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok || u.password != password {
		return nil, service.ErrInvalidCredentials
	}
	return m.issue(u), nil
}

func (m *memIdentity) Reauthenticate(ctx context.Context, uid, email, password string) (*service.Credential, error) {
	cred, err := m.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.requireRecent = false
	m.mu.Unlock()
	return cred, nil
}

func (m *memIdentity) Delete(_ context.Context, idToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.requireRecent {
		return service.ErrRequiresRecentLogin
	}
	u, ok := m.byToken[idToken]
	if !ok {
		return service.ErrIdentityMismatch
	}
	delete(m.byEmail, u.email)
	u.deleted = true
	m.deletedAccounts = append(m.deletedAccounts, u.uid)
	return nil
}

func (m *memIdentity) SignOut(context.Context, string) error {
	return errors.New("revocation backend down")
}

func (m *memIdentity) VerifyToken(_ context.Context, idToken string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byToken[idToken]
	if !ok {
		return "", "", errors.New("invalid token")
	}
	if u.deleted {
		return "", "", errors.New("user not found")
	}
	return u.uid, u.email, nil
}

type memProfiles struct {
	mu   sync.Mutex
	docs map[string]entity.Profile
}

func (m *memProfiles) Create(_ context.Context, p *entity.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[p.UID] = *p
	return nil
}

func (m *memProfiles) GetByID(_ context.Context, uid string) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.docs[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memProfiles) Update(_ context.Context, uid string, u entity.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.docs[uid]
	if !ok {
		return repository.ErrNotFound
	}
	p.Apply(u)
	m.docs[uid] = p
	return nil
}

func (m *memProfiles) Delete(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, uid)
	return nil
}

type memPosts struct {
	mu   sync.Mutex
	seq  int
	docs map[entity.PostType][]entity.Post
	subs map[entity.PostType][]chan entity.PostSnapshot
}

func (m *memPosts) Create(_ context.Context, p *entity.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p.ID = fmt.Sprintf("p%d", m.seq)
	p.DateCreated = time.Now()
	m.docs[p.Type] = append([]entity.Post{*p}, m.docs[p.Type]...)
	m.publish(p.Type)
	return nil
}

func (m *memPosts) ListByOwner(_ context.Context, t entity.PostType, userID string) ([]*entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Post
	for i := range m.docs[t] {
		if m.docs[t][i].UserID == userID {
			p := m.docs[t][i]
			out = append(out, &p)
		}
	}
	return out, nil
}

func (m *memPosts) Delete(_ context.Context, t entity.PostType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []entity.Post
	for _, p := range m.docs[t] {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.docs[t] = kept
	m.publish(t)
	return nil
}

func (m *memPosts) Subscribe(ctx context.Context, t entity.PostType) (<-chan entity.PostSnapshot, context.CancelFunc) {
	ch := make(chan entity.PostSnapshot, 8)

	m.mu.Lock()
	m.subs[t] = append(m.subs[t], ch)
	ch <- m.snapshot(t)
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			subs := m.subs[t][:0]
			for _, sub := range m.subs[t] {
				if sub != ch {
					subs = append(subs, sub)
				}
			}
			m.subs[t] = subs
			close(ch)
		})
	}
}

func (m *memPosts) snapshot(t entity.PostType) entity.PostSnapshot {
	posts := make([]*entity.Post, 0, len(m.docs[t]))
	for i := range m.docs[t] {
		p := m.docs[t][i]
		posts = append(posts, &p)
	}
	return entity.PostSnapshot{Type: t, Posts: posts, ReadAt: time.Now()}
}

func (m *memPosts) publish(t entity.PostType) {
	snap := m.snapshot(t)
	for _, ch := range m.subs[t] {
		select {
		case ch <- snap:
		default:
		}
	}
}

type memFiles struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func (m *memFiles) UploadFile(_ context.Context, file io.Reader, _ int64, _ string, folder string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	url := fmt.Sprintf("https://files.test/%s/%d.png", folder, len(m.uploads)+1)
	m.uploads[url] = data
	return url, nil
}

func (m *memFiles) DeleteFile(_ context.Context, fileURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, fileURL)
	return nil
}

func (m *memFiles) Close() error { return nil }
