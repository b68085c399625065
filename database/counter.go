package database

import (
	"ignix/interface/resp"
	"ignix/lib/utils"
	"ignix/resp/reply"
)

// execIncr implements INCR k. The increment happens under a single shard
// lock; failed increments are not logged to the aof.
func execIncr(db *DB, args [][]byte) resp.Reply {
	n, err := db.data.Incr(args[0])
	if err != nil {
		return reply.MakeNotIntegerErrReply()
	}
	db.addAof(utils.ToCmdLine2("INCR", args...))
	return reply.MakeIntReply(n)
}

func init() {
	RegisterCommand("incr", execIncr, 2)
}
