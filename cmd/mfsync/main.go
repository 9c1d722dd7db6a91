package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
	"github.com/smarty/mfsync/core"
	"github.com/smarty/mfsync/shell"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	if isSubCommand("check") {
		os.Exit(checkMain(os.Args[2:]))
	} else if isSubCommand("config") {
		configMain()
	} else if isSubCommand("version") {
		versionMain()
	} else if isSubCommand("mossy") {
		mossyMain(os.Args[2:])
	} else if isSubCommand("update") {
		updateMain(os.Args[2:])
	} else {
		updateMain(os.Args[1:])
	}
}

func isSubCommand(name string) bool {
	return len(os.Args) > 1 && os.Args[1] == name
}

func loadConfig(name string, args []string) contracts.Config {
	loader := core.NewConfigLoader(afero.NewOsFs(), shell.NewEnvironment(nil, ".env"), os.Stderr)
	config, err := loader.LoadConfig(name, args)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal(err)
	}
	return config
}

func updateMain(args []string) {
	config := loadConfig("update", args)
	if _, err := NewApp(config).Update(); err != nil {
		log.Fatal("[ERROR] ", err)
	}
}

func mossyMain(args []string) {
	config := loadConfig("mossy", args)
	if _, err := NewApp(config).SyncMossy(); err != nil {
		log.Fatal("[ERROR] ", err)
	}
}

func checkMain(args []string) int {
	config := loadConfig("check", args)
	report, err := NewApp(config).Check()
	if err != nil {
		log.Println("[ERROR]", err)
		return 1
	}
	if report.State == contracts.LocalPresentNoUpdateNeeded {
		return 0
	}
	return 2
}

func configMain() {
	if err := core.WriteDefaultConfig(os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func versionMain() {
	fmt.Printf("mfsync [%s]\n", ldflagsSoftwareVersion)
}

var ldflagsSoftwareVersion = "debug"
