// Package hotkeys grabs the configured key bindings on the root window and
// posts the bound commands.
package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/config"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Poster accepts commands triggered by key presses.
type Poster interface {
	Post(ctx context.Context, cmd command.Command)
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	poster Poster
	logger *slog.Logger

	mu  sync.Mutex
	ctx context.Context
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. Key presses post to poster with ctx.
func NewHandler(ctx context.Context, xu *xgbutil.XUtil, poster Poster, logger *slog.Logger) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		xu:     xu,
		root:   xu.RootWin(),
		poster: poster,
		logger: logger,
		ctx:    ctx,
	}
}

// Bind replaces every grabbed key with bindings. Bindings that cannot be
// grabbed are skipped and reported together; the rest stay active.
func (h *Handler) Bind(bindings []config.Binding) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)

	var errs []error
	for _, b := range bindings {
		cmd := b.Command
		err := h.registerFunc(b.Keys, func() {
			h.logger.Debug("hotkey pressed", "keys", b.Keys, "command", cmd.String())
			h.poster.Post(h.ctx, cmd)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to bind %s: %w", b.Keys, err))
		}
	}
	h.logger.Info("key bindings registered", "count", len(bindings)-len(errs))
	return errors.Join(errs...)
}

func (h *Handler) registerFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = IgnoreMasks(base)
}

// IgnoreMasks returns every combination of the given lock modifiers,
// including none, so bindings fire regardless of lock state.
func IgnoreMasks(locks []uint16) []uint16 {
	out := make([]uint16, 0, 1<<len(locks))
	for subset := 0; subset < (1 << len(locks)); subset++ {
		var mask uint16
		for bit := range locks {
			if subset&(1<<bit) != 0 {
				mask |= locks[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
