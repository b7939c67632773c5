package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/genricoloni/dancedeck/internal/domain"
	"github.com/genricoloni/dancedeck/internal/loader"
	"github.com/genricoloni/dancedeck/internal/state"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Deck orchestrates playback across the whole dance collection.
// It listens to user intents and routes them to the per-item coordinators.
type Deck struct {
	logger   *zap.Logger
	store    *state.Store
	engine   domain.RenderingEngine
	source   domain.IntentSource
	order    []domain.Identifier
	byID     map[domain.Identifier]*Coordinator
	cancel   context.CancelFunc
	loopDone chan struct{}
	toggles  sync.WaitGroup // in-flight toggles
}

// NewDeck builds one coordinator per item, in catalog order.
// engine may be nil, in which case toggles never start playback.
func NewDeck(
	logger *zap.Logger,
	store *state.Store,
	loaders loader.Set,
	engine domain.RenderingEngine,
	source domain.IntentSource,
	items []domain.DanceItem,
) (*Deck, error) {
	d := &Deck{
		logger: logger,
		store:  store,
		engine: engine,
		source: source,
		byID:   make(map[domain.Identifier]*Coordinator, len(items)),
	}

	for _, item := range items {
		if _, dup := d.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate dance id %q", item.ID)
		}
		d.byID[item.ID] = NewCoordinator(logger, store, loaders, engine, item)
		d.order = append(d.order, item.ID)
	}

	if engine == nil {
		logger.Warn("No rendering engine configured, dances will load but never play")
	}
	return d, nil
}

// Coordinator returns the coordinator of id
func (d *Deck) Coordinator(id domain.Identifier) (*Coordinator, bool) {
	c, ok := d.byID[id]
	return c, ok
}

// Items returns the collection in catalog order
func (d *Deck) Items() []domain.DanceItem {
	items := make([]domain.DanceItem, 0, len(d.order))
	for _, id := range d.order {
		items = append(items, d.byID[id].Item())
	}
	return items
}

// Toggle flips play/pause for id. It blocks until the item's resources resolve.
func (d *Deck) Toggle(ctx context.Context, id domain.Identifier) {
	c, ok := d.byID[id]
	if !ok {
		d.logger.Warn("Toggle for unknown dance ignored", zap.String("item", string(id)))
		return
	}
	c.Toggle(ctx)
}

// Select focuses id
func (d *Deck) Select(id domain.Identifier) {
	c, ok := d.byID[id]
	if !ok {
		d.logger.Warn("Select for unknown dance ignored", zap.String("item", string(id)))
		return
	}
	c.Select()
}

// ItemStatus is the observable state of one item
type ItemStatus struct {
	Item     domain.DanceItem
	Selected bool
	Current  bool // item is the store's playing id
	Playing  bool // item's playback is active
	Progress map[domain.ResourceRole]domain.LoadProgress
}

// Status reports the shared state and the per-item playback and load state
func (d *Deck) Status() (domain.PlaybackSnapshot, []ItemStatus) {
	snap := d.store.Snapshot()
	out := make([]ItemStatus, 0, len(d.order))
	for _, id := range d.order {
		c := d.byID[id]
		out = append(out, ItemStatus{
			Item:     c.Item(),
			Selected: snap.SelectedID == id,
			Current:  snap.PlayingID == id,
			Playing:  c.IsPlaying(),
			Progress: c.Progress(),
		})
	}
	return snap, out
}

// Start launches the intent processing loop in a goroutine.
// It returns immediately (non-blocking).
func (d *Deck) Start(ctx context.Context) error {
	d.logger.Info("Deck starting...", zap.Int("dances", len(d.order)))

	// The start context expires once startup completes; the loop outlives it
	loopCtx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.loopDone = make(chan struct{})

	go d.runLoop(loopCtx)
	return nil
}

// runLoop dispatches intents until the source closes or the deck stops
func (d *Deck) runLoop(ctx context.Context) {
	defer close(d.loopDone)

	if d.source == nil {
		d.logger.Warn("No intent source configured")
		<-ctx.Done()
		return
	}

	intents := d.source.Events()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Deck loop stopped")
			return

		case intent, ok := <-intents:
			if !ok {
				d.logger.Info("Intent source closed")
				return
			}
			d.dispatch(ctx, intent)
		}
	}
}

func (d *Deck) dispatch(ctx context.Context, intent domain.Intent) {
	d.logger.Debug("Intent received",
		zap.String("kind", string(intent.Kind)),
		zap.String("item", string(intent.Target)))

	switch intent.Kind {
	case domain.IntentSelect:
		d.Select(intent.Target)

	case domain.IntentToggle:
		// Toggles overlap: a dance still loading must not block the next intent
		d.toggles.Add(1)
		go func() {
			defer d.toggles.Done()
			d.Toggle(ctx, intent.Target)
		}()

	case domain.IntentStatus:
		d.logStatus()

	case domain.IntentList:
		for _, item := range d.Items() {
			d.logger.Info("Dance",
				zap.String("id", string(item.ID)),
				zap.String("name", item.Name),
				zap.String("author", item.Author),
				zap.Bool("camera", item.HasCamera()))
		}

	default:
		d.logger.Warn("Unknown intent ignored", zap.String("kind", string(intent.Kind)))
	}
}

func (d *Deck) logStatus() {
	snap, items := d.Status()
	d.logger.Info("Playback state",
		zap.String("selected", string(snap.SelectedID)),
		zap.String("playing", string(snap.PlayingID)),
		zap.Uint64("activation", snap.Activation))

	for _, st := range items {
		fields := []zap.Field{
			zap.String("item", string(st.Item.ID)),
			zap.Bool("selected", st.Selected),
			zap.Bool("current", st.Current),
			zap.Bool("playing", st.Playing),
		}
		for _, role := range domain.Roles {
			if p, ok := st.Progress[role]; ok && p.Downloading {
				fields = append(fields, zap.Float64(string(role)+"Percent", p.Percent))
			}
		}
		d.logger.Info("Dance state", fields...)
	}
}

// Stop cancels the loop, waits for in-flight toggles and stops the renderer
func (d *Deck) Stop(ctx context.Context) error {
	d.logger.Info("Deck stopping...")

	if d.cancel != nil {
		d.cancel()
		<-d.loopDone
	}

	waited := make(chan struct{})
	go func() {
		d.toggles.Wait()
		close(waited)
	}()

	var err error
	select {
	case <-waited:
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("waiting for in-flight toggles: %w", ctx.Err()))
	}

	if d.engine != nil {
		if stopErr := d.engine.Stop(ctx); stopErr != nil {
			err = multierr.Append(err, fmt.Errorf("stopping renderer: %w", stopErr))
		}
	}

	if err != nil {
		d.logger.Error("Deck stopped with errors", zap.Error(err))
		return err
	}
	d.logger.Info("Deck stopped")
	return nil
}
