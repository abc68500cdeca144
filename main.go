package main

import "github.com/leclercq/boutique/cmd"

func main() {
	cmd.Start()
}
