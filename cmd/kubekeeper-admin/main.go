package main

import "github.com/ppiankov/kubekeeper/internal/cli"

func main() {
	cli.Execute()
}
