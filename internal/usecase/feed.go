package usecase

import (
	"context"
	"strings"
	"sync"

	"giveget/internal/domain/entity"
	apperrors "giveget/pkg/errors"
	"giveget/pkg/logger"
	"giveget/pkg/metrics"
)

// FeedSource opens ordered snapshot streams; repository.PostRepository
// satisfies it.
type FeedSource interface {
	Subscribe(ctx context.Context, postType entity.PostType) (<-chan entity.PostSnapshot, context.CancelFunc)
}

// TabState is the loading/error status of one listing.
type TabState struct {
	Loading bool
	Err     *apperrors.AppError
	Count   int
}

type feedTab struct {
	posts   []*entity.Post
	loading bool
	err     *apperrors.AppError
}

// ListingFeed keeps the give and get listings current from two independent
// subscriptions. Each snapshot replaces its listing wholesale. A failed
// subscription is not retried; Start again to resubscribe. Start and Stop
// belong to the goroutine that owns the feed.
type ListingFeed struct {
	source  FeedSource
	tabs    map[entity.PostType]*feedTab
	changes chan struct{}
	cancels []context.CancelFunc
	wg      sync.WaitGroup
	mutex   sync.RWMutex
}

func NewListingFeed(source FeedSource) *ListingFeed {
	f := &ListingFeed{
		source:  source,
		tabs:    make(map[entity.PostType]*feedTab),
		changes: make(chan struct{}, 1),
	}
	for _, t := range entity.PostTypes {
		f.tabs[t] = &feedTab{}
	}
	return f
}

// Start (re)opens both subscriptions, discarding any previous state.
func (f *ListingFeed) Start(ctx context.Context) {
	f.Stop()

	f.mutex.Lock()
	for _, t := range entity.PostTypes {
		f.tabs[t] = &feedTab{loading: true}
	}
	f.mutex.Unlock()

	for _, t := range entity.PostTypes {
		snaps, cancel := f.source.Subscribe(ctx, t)
		f.cancels = append(f.cancels, cancel)

		f.wg.Add(1)
		go f.consume(t, snaps)
	}
	f.notify()
}

// Stop cancels both subscriptions and waits for their consumers to exit.
func (f *ListingFeed) Stop() {
	for _, cancel := range f.cancels {
		cancel()
	}
	f.cancels = nil
	f.wg.Wait()
}

// Changes signals that a listing or its status changed. Signals coalesce.
func (f *ListingFeed) Changes() <-chan struct{} {
	return f.changes
}

func (f *ListingFeed) consume(t entity.PostType, snaps <-chan entity.PostSnapshot) {
	defer f.wg.Done()

	for snap := range snaps {
		f.mutex.Lock()
		tab := f.tabs[t]
		if snap.Err != nil {
			tab.loading = false
			tab.err = subscriptionError(t, snap.Err)
			f.mutex.Unlock()

			metrics.FeedErrors.WithLabelValues(t.Collection()).Inc()
			logger.Warn("Listing %s stopped: %v", t.Collection(), snap.Err)
			f.notify()
			return
		}
		tab.posts = snap.Posts
		tab.loading = false
		tab.err = nil
		f.mutex.Unlock()

		metrics.FeedSnapshots.WithLabelValues(t.Collection()).Inc()
		f.notify()
	}
}

func (f *ListingFeed) notify() {
	select {
	case f.changes <- struct{}{}:
	default:
	}
}

func (f *ListingFeed) State(t entity.PostType) TabState {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	tab, ok := f.tabs[t]
	if !ok {
		return TabState{}
	}
	return TabState{Loading: tab.loading, Err: tab.err, Count: len(tab.posts)}
}

// Visible filters the currently held listing for t without touching the
// backend.
func (f *ListingFeed) Visible(t entity.PostType, query string) []*entity.Post {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	tab, ok := f.tabs[t]
	if !ok {
		return nil
	}
	return FilterPosts(tab.posts, query)
}

// FilterPosts keeps the posts whose description or city contains query,
// ignoring case. An empty query keeps everything in order.
func FilterPosts(posts []*entity.Post, query string) []*entity.Post {
	if query == "" {
		out := make([]*entity.Post, len(posts))
		copy(out, posts)
		return out
	}

	q := strings.ToLower(query)
	out := make([]*entity.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Description), q) || strings.Contains(strings.ToLower(p.City), q) {
			out = append(out, p)
		}
	}
	return out
}

func subscriptionError(t entity.PostType, err error) *apperrors.AppError {
	if t == entity.PostTypeGet {
		return apperrors.RemoteUnavailable("Unable to load requests, reopen the feed to retry.", err)
	}
	return apperrors.RemoteUnavailable("Unable to load posts, reopen the feed to retry.", err)
}
