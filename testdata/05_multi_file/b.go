package app

// +description="Beta method"
func (a *App) Beta(names ...string) (int, error) { return len(names), nil }

// +description="Alpha lives in b.go"
func (a *App) Alpha() {}
