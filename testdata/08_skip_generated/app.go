package app

type App struct{}

// +description="real"
func (a *App) Real() {}
