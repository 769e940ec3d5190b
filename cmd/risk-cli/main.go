package main

import "github.com/synaptica-ai/afi-risk/pkg/cli"

func main() {
	cli.Execute()
}
