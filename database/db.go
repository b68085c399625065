package database

import (
	"strings"

	"ignix/datastruct/dict"
	"ignix/interface/resp"
	"ignix/resp/reply"
)

// DB binds the dictionary to the command table. Commands run synchronously on
// the connection goroutine that parsed them; parallelism comes from running
// many connections, not from a worker pool.
type DB struct {
	data   dict.Dict
	addAof func(line CmdLine)
}

// ExecFunc is the signature of a command implementation. args does not
// include the command name.
type ExecFunc func(db *DB, args [][]byte) resp.Reply

// CmdLine is alias for [][]byte, represents a command line
type CmdLine = [][]byte

func makeDB(shards int) *DB {
	return &DB{
		data: dict.MakeShardDict(shards),
		// replaced once the aof handler is wired; must never be nil
		addAof: func(line CmdLine) {},
	}
}

// Exec dispatches one parsed command array
func (db *DB) Exec(c resp.Connection, cmdLine CmdLine) resp.Reply {
	cmdName := strings.ToLower(string(cmdLine[0]))
	cmd, ok := cmdTable[cmdName]
	if !ok {
		return reply.MakeUnknownCmdErrReply(cmdName)
	}
	if !validateArity(cmd.arity, cmdLine) {
		return reply.MakeArgNumErrReply(cmdName)
	}
	return cmd.executor(db, cmdLine[1:])
}

// validateArity checks the argument count against the command's arity.
// SET k v has arity 3; EXISTS k1 k2 ... has arity -2.
func validateArity(arity int, cmdArgs [][]byte) bool {
	argNum := len(cmdArgs)
	if arity >= 0 {
		return argNum == arity
	}
	return argNum >= -arity
}
