package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"giveget/internal/domain/entity"
	"giveget/internal/domain/repository"
	"giveget/internal/domain/service"
)

type fakeUser struct {
	uid      string
	password string
}

type fakeIdentity struct {
	mu          sync.Mutex
	users       map[string]fakeUser
	seq         int
	signUpErr   error
	signInErr   error
	deleteErrs  []error
	signOutErr  error
	signUpCalls int
	signInCalls int
	deleted     []string
	signedOut   []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: make(map[string]fakeUser)}
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password, _ string) (*service.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUpCalls++
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	if _, ok := f.users[email]; ok {
		return nil, service.ErrEmailExists
	}
	f.seq++
	uid := fmt.Sprintf("uid-%d", f.seq)
	f.users[email] = fakeUser{uid: uid, password: password}
	return &service.Credential{UID: uid, Email: email, IDToken: "token-" + uid, IssuedAt: time.Now()}, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*service.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signInCalls++
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	u, ok := f.users[email]
	if !ok || u.password != password {
		return nil, service.ErrInvalidCredentials
	}
	return &service.Credential{UID: u.uid, Email: email, IDToken: "fresh-" + u.uid, IssuedAt: time.Now()}, nil
}

func (f *fakeIdentity) Reauthenticate(ctx context.Context, uid, email, password string) (*service.Credential, error) {
	cred, err := f.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if cred.UID != uid {
		return nil, service.ErrIdentityMismatch
	}
	return cred, nil
}

func (f *fakeIdentity) Delete(_ context.Context, idToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.deleteErrs) > 0 {
		err := f.deleteErrs[0]
		f.deleteErrs = f.deleteErrs[1:]
		if err != nil {
			return err
		}
	}
	f.deleted = append(f.deleted, idToken)
	return nil
}

func (f *fakeIdentity) SignOut(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, uid)
	return f.signOutErr
}

type fakeProfiles struct {
	mu           sync.Mutex
	docs         map[string]*entity.Profile
	createErr    error
	updateErr    error
	updateCalls  int
	deleteCalls  int
	deleteMisses int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{docs: make(map[string]*entity.Profile)}
}

func (f *fakeProfiles) Create(_ context.Context, p *entity.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.docs[p.UID] = &cp
	return nil
}

func (f *fakeProfiles) GetByID(_ context.Context, uid string) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.docs[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Update(_ context.Context, uid string, u entity.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.docs[uid]
	if !ok {
		return repository.ErrNotFound
	}
	p.Apply(u)
	return nil
}

func (f *fakeProfiles) Delete(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if _, ok := f.docs[uid]; !ok {
		f.deleteMisses++
		return repository.ErrNotFound
	}
	delete(f.docs, uid)
	return nil
}

func (f *fakeProfiles) get(uid string) (*entity.Profile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.docs[uid]
	return p, ok
}

type fakeSub struct {
	ch     chan entity.PostSnapshot
	closed bool
}

// fakePosts is an in-memory store whose subscriptions see every write.
type fakePosts struct {
	mu      sync.Mutex
	docs    map[entity.PostType][]*entity.Post
	subs    map[entity.PostType][]*fakeSub
	seq     int
	now     func() time.Time
	listErr error
	deleted []string
	misses  []string
	// stale entries are still returned by ListByOwner after the document
	// itself is gone, like a lagging index.
	stale map[entity.PostType][]*entity.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{
		docs: make(map[entity.PostType][]*entity.Post),
		subs: make(map[entity.PostType][]*fakeSub),
		now:  time.Now,
	}
}

func (f *fakePosts) Create(_ context.Context, p *entity.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = fmt.Sprintf("%s-%d", p.Type, f.seq)
	p.DateCreated = f.now()
	cp := *p
	f.docs[p.Type] = append([]*entity.Post{&cp}, f.docs[p.Type]...)
	f.broadcast(p.Type)
	return nil
}

func (f *fakePosts) ListByOwner(_ context.Context, t entity.PostType, userID string) ([]*entity.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*entity.Post
	for _, listed := range [][]*entity.Post{f.docs[t], f.stale[t]} {
		for _, p := range listed {
			if p.UserID == userID {
				cp := *p
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (f *fakePosts) Delete(_ context.Context, t entity.PostType, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.docs[t][:0]
	for _, p := range f.docs[t] {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(f.docs[t]) {
		f.misses = append(f.misses, id)
		return repository.ErrNotFound
	}
	f.docs[t] = kept
	f.deleted = append(f.deleted, id)
	f.broadcast(t)
	return nil
}

func (f *fakePosts) Subscribe(_ context.Context, t entity.PostType) (<-chan entity.PostSnapshot, context.CancelFunc) {
	sub := &fakeSub{ch: make(chan entity.PostSnapshot, 16)}

	f.mu.Lock()
	f.subs[t] = append(f.subs[t], sub)
	sub.ch <- f.snapshot(t)
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
	}
	return sub.ch, cancel
}

// fail terminates every open subscription of t with err.
func (f *fakePosts) fail(t entity.PostType, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs[t] {
		if sub.closed {
			continue
		}
		sub.ch <- entity.PostSnapshot{Type: t, Err: err, ReadAt: f.now()}
		sub.closed = true
		close(sub.ch)
	}
}

func (f *fakePosts) openSubs(t entity.PostType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, sub := range f.subs[t] {
		if !sub.closed {
			n++
		}
	}
	return n
}

func (f *fakePosts) count(t entity.PostType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[t])
}

func (f *fakePosts) snapshot(t entity.PostType) entity.PostSnapshot {
	posts := make([]*entity.Post, len(f.docs[t]))
	copy(posts, f.docs[t])
	return entity.PostSnapshot{Type: t, Posts: posts, ReadAt: f.now()}
}

func (f *fakePosts) broadcast(t entity.PostType) {
	snap := f.snapshot(t)
	for _, sub := range f.subs[t] {
		if sub.closed {
			continue
		}
		select {
		case sub.ch <- snap:
		default:
		}
	}
}
