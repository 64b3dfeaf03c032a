// main is the entry point for the swagent CLI.
package main

import (
	"github.com/huangsam/swagent/cmd"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("swagent failed", err)
	}
}
