package database

import "strings"

// cmdTable maps command names to their implementations
var cmdTable = make(map[string]*command)

type command struct {
	executor ExecFunc
	// arity means the allowed number of args including the command name.
	// arity < 0 means len(args) >= -arity, for variadic commands.
	arity int
}

// RegisterCommand adds a command into cmdTable
func RegisterCommand(name string, executor ExecFunc, arity int) {
	name = strings.ToLower(name)
	cmdTable[name] = &command{
		executor: executor,
		arity:    arity,
	}
}
