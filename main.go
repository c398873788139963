package main

import "github.com/Norgate-AV/hipify-batch/cmd"

func main() {
	cmd.Execute()
}
