package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/genricoloni/dancedeck/internal/domain"
	"github.com/genricoloni/dancedeck/internal/loader"
	"github.com/genricoloni/dancedeck/internal/state"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// resolved holds the joined locators of one activation
type resolved struct {
	motion string
	audio  string
	camera string
}

// Coordinator drives playback of a single dance item.
//
// Mutual exclusion across items comes from the shared store: the local
// playing flag only counts while this coordinator's activation token is the
// store's latest one.
type Coordinator struct {
	logger  *zap.Logger
	store   *state.Store
	loaders loader.Set
	engine  domain.RenderingEngine
	item    domain.DanceItem

	mu         sync.Mutex
	playing    bool
	token      uint64 // activation token issued by the store
	generation uint64 // bumped on every local transition
}

// NewCoordinator creates the coordinator of item. engine may be nil.
func NewCoordinator(
	logger *zap.Logger,
	store *state.Store,
	loaders loader.Set,
	engine domain.RenderingEngine,
	item domain.DanceItem,
) *Coordinator {
	return &Coordinator{
		logger:  logger.With(zap.String("item", string(item.ID))),
		store:   store,
		loaders: loaders,
		engine:  engine,
		item:    item,
	}
}

// Item returns the coordinated dance item
func (c *Coordinator) Item() domain.DanceItem {
	return c.item
}

// Select focuses the item without touching playback
func (c *Coordinator) Select() {
	c.store.Select(c.item.ID)
}

// IsPlaying reports whether this item's playback is active
func (c *Coordinator) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isPlayingLocked()
}

func (c *Coordinator) isPlayingLocked() bool {
	return c.playing && c.store.IsCurrent(c.token) && c.store.PlayingID() == c.item.ID
}

// Progress returns the load state of every resource role of the item
func (c *Coordinator) Progress() map[domain.ResourceRole]domain.LoadProgress {
	out := make(map[domain.ResourceRole]domain.LoadProgress, len(domain.Roles))
	for _, role := range domain.Roles {
		if role == domain.RoleCamera && !c.item.HasCamera() {
			continue
		}
		if l := c.loaders.For(role); l != nil {
			out[role] = l.Progress(c.item.ID)
		}
	}
	return out
}

// Toggle stops the item if it is playing, otherwise activates it and starts
// playback once every resource has resolved. It blocks until the resources
// are joined. Failures are logged and never surface to the caller.
func (c *Coordinator) Toggle(ctx context.Context) {
	c.mu.Lock()
	if c.isPlayingLocked() {
		c.playing = false
		c.generation++
		c.mu.Unlock()

		c.logger.Info("Stopping dance")
		c.stopEngine(ctx)
		return
	}

	// The store write precedes any fetch
	token := c.store.SetPlayingID(c.item.ID)
	c.playing = true
	c.token = token
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.logger.Info("Activating dance",
		zap.Uint64("activation", token),
		zap.Bool("camera", c.item.HasCamera()))

	res, err := c.resolve(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || !c.store.IsCurrent(token) {
		c.logger.Info("Discarding stale resolution",
			zap.Uint64("activation", token),
			zap.Uint64("current", c.store.Activation()))
		return
	}

	if err != nil || res.motion == "" || res.audio == "" {
		// playingID stays on this item
		c.playing = false
		c.generation++
		c.logger.Warn("Resources unavailable, playback not started", zap.Error(err))
		return
	}

	if c.engine == nil {
		c.playing = false
		c.generation++
		c.logger.Warn("No rendering engine available, playback not started")
		return
	}

	if err := c.engine.Play(ctx, res.motion, res.audio, res.camera, c.onFinished(gen)); err != nil {
		c.playing = false
		c.generation++
		c.logger.Error("Rendering engine failed to start", zap.Error(err))
		return
	}

	c.logger.Info("Dance playing",
		zap.String("motion", res.motion),
		zap.String("audio", res.audio),
		zap.String("camera", res.camera))
}

// resolve fetches every resource of the item concurrently and joins them
func (c *Coordinator) resolve(ctx context.Context) (resolved, error) {
	var res resolved
	g, gctx := errgroup.WithContext(ctx)

	fetch := func(role domain.ResourceRole, ref string, dst *string) {
		g.Go(func() error {
			l := c.loaders.For(role)
			if l == nil {
				return fmt.Errorf("no %s loader", role)
			}
			locator, err := l.Fetch(gctx, c.item.ID, ref)
			if err != nil {
				return fmt.Errorf("%s: %w", role, err)
			}
			*dst = locator
			return nil
		})
	}

	fetch(domain.RoleMotion, c.item.MotionRef, &res.motion)
	fetch(domain.RoleAudio, c.item.AudioRef, &res.audio)
	if c.item.HasCamera() {
		fetch(domain.RoleCamera, c.item.CameraRef, &res.camera)
	}

	if err := g.Wait(); err != nil {
		return resolved{}, err
	}
	return res, nil
}

// onFinished returns the one-shot completion callback of generation gen.
// It clears the local flag only; playingID is left alone.
func (c *Coordinator) onFinished(gen uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if gen != c.generation {
				return
			}
			c.playing = false
			c.logger.Info("Dance finished")
		})
	}
}

func (c *Coordinator) stopEngine(ctx context.Context) {
	if c.engine == nil {
		c.logger.Debug("No rendering engine available, nothing to stop")
		return
	}
	if err := c.engine.Stop(ctx); err != nil {
		c.logger.Warn("Rendering engine failed to stop", zap.Error(err))
	}
}
