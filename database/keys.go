package database

import (
	"errors"

	"ignix/datastruct/dict"
	"ignix/interface/resp"
	"ignix/lib/utils"
	"ignix/resp/reply"
)

// execDel implements DEL k1 [k2 ...]
func execDel(db *DB, args [][]byte) resp.Reply {
	deleted := db.data.Del(args...)
	db.addAof(utils.ToCmdLine2("DEL", args...))
	return reply.MakeIntReply(int64(deleted))
}

// execExists implements EXISTS k1 [k2 ...]
func execExists(db *DB, args [][]byte) resp.Reply {
	return reply.MakeIntReply(int64(db.data.Exists(args...)))
}

// execRename implements RENAME src dst
func execRename(db *DB, args [][]byte) resp.Reply {
	err := db.data.Rename(args[0], args[1])
	if err != nil {
		if errors.Is(err, dict.ErrNoSuchKey) {
			return reply.MakeNoSuchKeyErrReply()
		}
		return reply.MakeErrReply("ERR " + err.Error())
	}
	db.addAof(utils.ToCmdLine2("RENAME", args...))
	return reply.MakeOkReply()
}

func init() {
	RegisterCommand("del", execDel, -2)
	RegisterCommand("exists", execExists, -2)
	RegisterCommand("rename", execRename, 3)
}
