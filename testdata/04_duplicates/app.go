package app

type App struct{}

type Other struct{}

// +description="one"
func (a *App) X() {}

// +description="two"
func (o *Other) X() {}
