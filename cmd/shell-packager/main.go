package main

import "github.com/wmshell/shell-packager/cmd/shell-packager/cmd"

func main() {
	cmd.Execute()
}
