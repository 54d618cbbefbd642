package main

import (
	"guard-bot/internal/handler/cli"
)

func main() {
	cli.Run()
}
