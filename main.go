package main

import (
	"github.com/shpakovkv/isf-converter/cli"
)

func main() {
	cli.Start()
}
