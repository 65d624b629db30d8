package main

import "mp4-splitter/cmd"

func main() {
	cmd.Execute()
}
