package main

import "github.com/hoppxi/sysset/internal/cmd"

func main() {
	cmd.Execute()
}
