package main

import "github.com/railtel/railgpt/cmd"

func main() {
	cmd.Execute()
}
