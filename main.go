package main

import "github.com/pricebook-hq/pricebook-api/cmd"

func main() {
	cmd.Execute()
}
