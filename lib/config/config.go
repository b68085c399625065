// Package config reads the ignix.conf properties file into Properties.
package config

import (
	"bufio"
	"io"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"ignix/lib/logger"
)

// ServerProperties defines global config properties
type ServerProperties struct {
	Bind               string `cfg:"bind"`
	Port               int    `cfg:"port"`
	Reactors           int    `cfg:"reactors"`
	Shards             int    `cfg:"shards"`
	MaxBulkLen         int    `cfg:"maxbulk"`
	AppendOnly         bool   `cfg:"appendonly"`
	AppendFilename     string `cfg:"appendfilename"`
	AofQueueSize       int    `cfg:"aof-queue-size"`
	AofFsyncIntervalMs int    `cfg:"aof-fsync-interval-ms"`
}

// Properties holds global config properties
var Properties *ServerProperties

func init() {
	Properties = DefaultProperties()
}

// DefaultProperties returns the built-in configuration
func DefaultProperties() *ServerProperties {
	return &ServerProperties{
		Bind:               "0.0.0.0",
		Port:               7379,
		Reactors:           runtime.NumCPU(),
		Shards:             16,
		MaxBulkLen:         512 * 1024 * 1024,
		AppendOnly:         true,
		AppendFilename:     "ignix.aof",
		AofQueueSize:       1 << 16,
		AofFsyncIntervalMs: 1000,
	}
}

func parse(src io.Reader) *ServerProperties {
	config := DefaultProperties()

	// read config file
	rawMap := make(map[string]string)
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > 0 && line[0] == '#' {
			continue
		}
		pivot := strings.IndexAny(line, " ")
		if pivot > 0 && pivot < len(line)-1 {
			key := line[0:pivot]
			value := strings.Trim(line[pivot+1:], " ")
			rawMap[strings.ToLower(key)] = value
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Fatal(err)
	}

	// parse format
	t := reflect.TypeOf(config)
	v := reflect.ValueOf(config)
	n := t.Elem().NumField()
	for i := 0; i < n; i++ {
		field := t.Elem().Field(i)
		fieldVal := v.Elem().Field(i)
		key, ok := field.Tag.Lookup("cfg")
		if !ok {
			key = field.Name
		}
		value, ok := rawMap[strings.ToLower(key)]
		if !ok {
			continue
		}
		switch field.Type.Kind() {
		case reflect.String:
			fieldVal.SetString(value)
		case reflect.Int:
			intValue, err := strconv.ParseInt(value, 10, 64)
			if err == nil {
				fieldVal.SetInt(intValue)
			}
		case reflect.Bool:
			boolValue := "yes" == value || "true" == value
			fieldVal.SetBool(boolValue)
		}
	}
	return config
}

// SetupConfig reads the config file and stores properties into Properties
func SetupConfig(configFilename string) {
	file, err := os.Open(configFilename)
	if err != nil {
		logger.Fatal(err)
	}
	defer file.Close()
	Properties = parse(file)
}
