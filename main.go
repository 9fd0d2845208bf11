package main

import "portfolio-api/cmd"

func main() {
	cmd.Execute()
}
