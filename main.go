package main

import "github.com/meysamhadeli/assetgraph/cmd"

func main() {
	cmd.Execute()
}
