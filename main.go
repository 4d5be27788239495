package main

import "asset-catalog/cmd"

func main() {
	cmd.Execute()
}
