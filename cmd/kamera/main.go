package main

import "github.com/MeKo-Tech/kamera/cmd/kamera/cmd"

func main() {
	cmd.Execute()
}
