package engine

// Game holds the user callbacks driven by the engine. Every callback runs
// on the logic thread.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnTick            Tick
	FnShutdown        Shutdown
}

// Initialize runs once after every subsystem is up.
type Initialize func(e *Engine) error

// Tick runs once per frame between BeginFrame and EndFrame. Returning an
// error stops the run loop.
type Tick func(e *Engine, deltaTime float64) error

// Shutdown runs before the subsystems are torn down.
type Shutdown func(e *Engine) error
