package main

import "github.com/OrangeCatLoves/guess-the-flag-backend/internal/cli"

func main() {
	cli.Execute()
}
