package main

import "github.com/capyflow/bibsplit/cmd"

func main() {
	cmd.Execute()
}
