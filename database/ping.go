package database

import (
	"ignix/interface/resp"
	"ignix/resp/reply"
)

// Ping replies +PONG, or echoes its single argument as a bulk string
func Ping(db *DB, args [][]byte) resp.Reply {
	if len(args) == 0 {
		return reply.MakePongReply()
	}
	if len(args) == 1 {
		return reply.MakeBulkReply(args[0])
	}
	return reply.MakeArgNumErrReply("ping")
}

func init() {
	RegisterCommand("ping", Ping, -1)
}
