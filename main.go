package main

import "github.com/moondogdev/reup-allotment-calculator/cmd"

func main() {
	cmd.Execute()
}
