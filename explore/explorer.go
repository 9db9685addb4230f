package explore

import (
	"golang.org/x/exp/slog"
)

// Explorer drives one interactive allocator-debugging surface: a control
// panel, a byte-grid visualization and a metadata/hierarchy panel, all
// rendered against a host-provided Frontend once per frame.
//
// Everything is single-threaded and frame-driven. Each RenderFrame performs
// read traversals, layout, drawing and input handling in a fixed order;
// mutations happen only inside input handling and are never interleaved with
// a read traversal, so no locking exists anywhere in the core.
type Explorer struct {
	cfg     Config
	factory Factory
	logger  *slog.Logger

	session *Session
	keys    *KeyEdge

	sizeInput      uint32
	capacityInput  uint32
	maxAllocsInput uint32
}

func NewExplorer(cfg Config, factory Factory, logger *slog.Logger) *Explorer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Explorer{
		cfg:     cfg,
		factory: factory,
		logger:  logger,

		keys: NewKeyEdge(),

		sizeInput:      1,
		capacityInput:  cfg.Capacity,
		maxAllocsInput: cfg.MaxAllocs,
	}
}

// Session returns the live allocator-plus-registry pair, or nil when no
// allocator has been created yet.
func (e *Explorer) Session() *Session {
	return e.session
}

// RenderFrame runs one full frame: control panel, visualization, metadata.
// Traversal failures and registry divergence panic- the tool exists to
// surface allocator-internal bugs, and swallowing them would hide exactly
// the state this tool is meant to expose.
func (e *Explorer) RenderFrame(frontend Frontend) {
	e.controlPanel(frontend)
	e.visualizationPanel(frontend)
	e.metadataPanel(frontend)
}

// pressed edge-triggers a keyboard accelerator from the frontend's polled
// key state, suppressed while a text input has focus.
func (e *Explorer) pressed(frontend Frontend, key Key) bool {
	return e.keys.Pressed(key, frontend.KeyDown(key), frontend.WantCaptureKeyboard())
}

func (e *Explorer) createSession() {
	if e.capacityInput == 0 || e.maxAllocsInput == 0 {
		return
	}

	allocator := e.factory(e.capacityInput, e.maxAllocsInput)
	e.session = NewSession(allocator, e.logger)
	e.logger.Info("created allocator",
		slog.Uint64("Capacity", uint64(e.capacityInput)),
		slog.Uint64("MaxAllocs", uint64(e.maxAllocsInput)))
}

func (e *Explorer) destroySession() {
	e.session = nil
	e.logger.Info("destroyed allocator")
}
