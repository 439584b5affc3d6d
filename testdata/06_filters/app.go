package app

type App struct{}

type Box[T any] struct{ v T }

// +description="exported"
func (a *App) Public() {}

// +description="unexported"
func (a *App) private() {}

// +description="generic receiver"
func (b *Box[T]) Get() T { return b.v }
