package main

import "github.com/patchdev/upsearch/cmd"

func main() {
	cmd.Run()
}
