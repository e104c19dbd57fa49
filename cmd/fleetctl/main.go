package main

import "github.com/fleetgrid/fleetd/internal/adapters/clicmd"

func main() {
	clicmd.Execute()
}
