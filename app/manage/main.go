package main

import (
	"os"
	"xmpp-homepage/app/manage/cmd"
)

func main() {
	rt := cmd.NewRuntime()
	err := cmd.NewRootCmd(rt).Execute()
	rt.Close()
	if err != nil {
		os.Exit(1)
	}
}
