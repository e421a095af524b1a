package main

import "github.com/vietddude/pulse/internal/cli"

func main() {
	cli.Execute()
}
