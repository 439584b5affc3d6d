package app

type App struct{}

// +description="He said \"hi\""
func (a App) A() {}
