// main.go
package main

import "siddhaka-portal/cmd"

func main() {
	cmd.Execute()
}
