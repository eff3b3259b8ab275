package main

import "github.com/platefull/storefront/cmd"

func main() {
	cmd.Execute()
}
