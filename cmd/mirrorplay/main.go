package main

import "github.com/PizzaHomicide/mirrorplay/internal/cli"

func main() {
	cli.Execute()
}
