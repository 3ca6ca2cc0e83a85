package main

import "github.com/andresmejia3/facelight/cmd"

func main() {
	cmd.Execute()
}
