package main

import "bakerypay/cmd"

func main() {
	cmd.Execute()
}
