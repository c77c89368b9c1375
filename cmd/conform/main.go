// Command conform resolves the interfaces of an integration definition file.
//
//	conform resolve github.yaml
//	conform statements github.yaml
//	conform openapi github.yaml -o openapi.json
//	conform validate github.yaml payload.json --action issue.list
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
