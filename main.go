package main

import (
	"groom/cmd"
)

func main() {
	cmd.Execute()
}
