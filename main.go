package main

import "replcheck/cmd"

func main() {
	cmd.Execute()
}
