package main

import (
	"github.com/guptam/altimeter/cmd/altimeter/internal/command"
)

func main() {
	command.Execute()
}
