// main is the entry point of the worktally CLI.
package main

import (
	"github.com/worktally/worktally/cmd"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseStores()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("worktally", err)
	}
}
