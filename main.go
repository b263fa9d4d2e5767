package main

import "github.com/ValentinKolb/dCaesar/cmd"

func main() {
	cmd.Execute()
}
