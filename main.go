package main

import (
	"os"

	"github.com/GoSlider/GoSlider/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
