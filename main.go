package main

import "github.com/kozaktomas/trip-albums/cmd"

func main() {
	cmd.Execute()
}
