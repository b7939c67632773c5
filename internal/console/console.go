package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/genricoloni/dancedeck/internal/domain"
	"go.uber.org/zap"
)

// Console reads line commands and turns them into intents:
//
//	select <id>
//	toggle <id>   (alias: play)
//	status
//	list
type Console struct {
	logger *zap.Logger
	in     io.Reader
	events chan domain.Intent

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewConsole creates a console reading from stdin
func NewConsole(logger *zap.Logger) *Console {
	return New(logger, os.Stdin)
}

// New creates a console reading from in
func New(logger *zap.Logger, in io.Reader) *Console {
	return &Console{
		logger: logger,
		in:     in,
		events: make(chan domain.Intent),
	}
}

// Events returns the intent channel. It is closed once input ends.
func (c *Console) Events() <-chan domain.Intent {
	return c.events
}

// Start begins reading input in a goroutine
func (c *Console) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	c.running = true

	readCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go c.read(readCtx)
	c.logger.Info("Console ready", zap.String("commands", "select <id> | toggle <id> | status | list"))
	return nil
}

// Stop stops emitting intents. A read already blocked on input is abandoned.
func (c *Console) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.running = false
	return nil
}

func (c *Console) read(ctx context.Context) {
	defer close(c.events)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		intent, ok, err := ParseLine(scanner.Text())
		if err != nil {
			c.logger.Warn("Invalid command", zap.String("line", scanner.Text()), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		select {
		case c.events <- intent:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.logger.Error("Console input failed", zap.Error(err))
		return
	}
	c.logger.Info("Console input closed")
}

// ParseLine turns one command line into an intent.
// Blank lines and # comments yield ok == false.
func ParseLine(line string) (intent domain.Intent, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return domain.Intent{}, false, nil
	}

	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "select", "toggle", "play":
		if len(args) != 1 {
			return domain.Intent{}, false, fmt.Errorf("%s needs exactly one dance id", cmd)
		}
		kind := domain.IntentSelect
		if cmd != "select" {
			kind = domain.IntentToggle
		}
		return domain.Intent{Kind: kind, Target: domain.Identifier(args[0])}, true, nil

	case "status", "list":
		if len(args) != 0 {
			return domain.Intent{}, false, fmt.Errorf("%s takes no arguments", cmd)
		}
		kind := domain.IntentStatus
		if cmd == "list" {
			kind = domain.IntentList
		}
		return domain.Intent{Kind: kind}, true, nil

	default:
		return domain.Intent{}, false, fmt.Errorf("unknown command %q", cmd)
	}
}
