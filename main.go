package main

import "idesync/src/cmd"

func main() {
	cmd.Execute()
}
