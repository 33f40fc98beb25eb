package main

import (
	"github.com/mchmarny/revscore/pkg/cli"
)

func main() {
	cli.Execute()
}
