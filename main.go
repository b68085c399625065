package main

import (
	"fmt"
	"os"

	"ignix/lib/config"
	"ignix/lib/logger"
	"ignix/resp/handler"
	"ignix/resp/parser"
	"ignix/tcp"
)

const configFile string = "ignix.conf"

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

func main() {
	logger.Setup(&logger.Settings{
		Path:       "logs",
		Name:       "ignix",
		Ext:        "log",
		TimeFormat: "2006-01-02",
	})
	if fileExists(configFile) {
		config.SetupConfig(configFile)
	}
	parser.MaxBulkLen = config.Properties.MaxBulkLen

	logger.Info(fmt.Sprintf("ignix starting on %s:%d", config.Properties.Bind, config.Properties.Port))
	err := tcp.ListenAndServeWithSignal(
		&tcp.Config{
			Address:  fmt.Sprintf("%s:%d", config.Properties.Bind, config.Properties.Port),
			Reactors: config.Properties.Reactors,
		},
		// MakeHandler builds the engine, which replays the aof before
		// the listeners open.
		handler.MakeHandler())
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
