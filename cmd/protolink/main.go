package main

import "github.com/mvp-joe/protolink/internal/cli"

func main() {
	cli.Execute()
}
