package main

import (
	"github.com/P-Jays/crypto-telegram-bot/cmd"
)

func main() {
	cmd.Execute()
}
