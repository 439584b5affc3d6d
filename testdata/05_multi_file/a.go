package app

type App struct{}

// +description="Zeta lives in a.go"
func (a *App) Zeta(n int) string { return "" }
