package main

import "kleenestar/internal/app"

func main() {
	app.Run()
}
