package main

import "adofill/cmd"

func main() {
	cmd.Execute()
}
