package app

type App struct{}

// Greet prints a greeting.
// +description="Say hello"
func (a *App) Greet() {}

// Run is not described.
func (a *App) Run() error { return nil }
