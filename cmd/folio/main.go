package main

import "github.com/mvp-joe/folio/internal/cli"

func main() {
	cli.Execute()
}
