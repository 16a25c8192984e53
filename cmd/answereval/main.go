package main

import "github.com/datar-psa/answereval/internal/cli"

func main() {
	cli.Execute()
}
