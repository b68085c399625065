package database

import (
	"ignix/interface/resp"
	"ignix/lib/utils"
	"ignix/resp/reply"
)

// execGet implements GET k. Integer-kind values render as their decimal text.
func execGet(db *DB, args [][]byte) resp.Reply {
	v, exists := db.data.Get(args[0])
	if !exists {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeBulkReply(v.Bytes())
}

// execSet implements SET k v. An empty value is stored as an empty string.
func execSet(db *DB, args [][]byte) resp.Reply {
	db.data.Set(args[0], args[1])
	db.addAof(utils.ToCmdLine2("SET", args...))
	return reply.MakeOkReply()
}

// execMSet implements MSET k1 v1 [k2 v2 ...]
func execMSet(db *DB, args [][]byte) resp.Reply {
	if len(args)%2 != 0 {
		return reply.MakeArgNumErrReply("mset")
	}
	db.data.MSet(args...)
	db.addAof(utils.ToCmdLine2("MSET", args...))
	return reply.MakeOkReply()
}

// execMGet implements MGET k1 [k2 ...]; absent keys yield null bulks
func execMGet(db *DB, args [][]byte) resp.Reply {
	values := db.data.MGet(args...)
	result := make([][]byte, len(values))
	for i, v := range values {
		if v == nil {
			result[i] = nil
			continue
		}
		result[i] = v.Bytes()
	}
	return reply.MakeMultiBulkReply(result)
}

func init() {
	RegisterCommand("get", execGet, 2)
	RegisterCommand("set", execSet, 3)
	RegisterCommand("mset", execMSet, -3)
	RegisterCommand("mget", execMGet, -2)
}
