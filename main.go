package main

import "quorum-booking/cmd"

func main() {
	cmd.Execute()
}
