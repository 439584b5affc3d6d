package app

type App struct{}

// +description="unterminated
func (a *App) Broken() {}

// +description
func (a *App) NoArgs() {}

// +summary="other marker"
func (a *App) Other() {}

// +summary="first"
// +description=42
func (a *App) Numeric() {}
