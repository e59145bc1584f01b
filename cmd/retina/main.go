package main

import "github.com/MeKo-Tech/retina/cmd/retina/cmd"

func main() {
	cmd.Execute()
}
