package app

type App struct{}

// Greet has a doc comment but no marker.
func (a *App) Greet() {}

// +description="functions are not methods"
func Helper() {}
