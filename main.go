package main

import "content-porter/cmd"

func main() {
	cmd.Execute()
}
