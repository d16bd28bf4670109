package main

import "github.com/valpere/termitran/cmd"

func main() {
	cmd.Execute()
}
