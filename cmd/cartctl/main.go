package main

import (
	"fmt"
	"os"

	"github.com/MarcGrol/tripcart/services/cart/cartcli"
)

func main() {
	err := cartcli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
