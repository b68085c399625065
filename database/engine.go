package database

import (
	"ignix/aof"
	"ignix/interface/resp"
	"ignix/lib/config"
	"ignix/lib/logger"
	"ignix/resp/reply"
)

// Engine is the storage engine handed to every reactor: one dictionary plus
// the aof handler. It is constructed before listeners open and closed after
// all connections are gone.
type Engine struct {
	db         *DB
	aofHandler *aof.AofHandler
}

// NewEngine creates the engine and, when appendonly is enabled, replays the
// existing aof file into it before wiring the live aof hook. Mutations
// executed during replay are not re-logged.
func NewEngine() *Engine {
	engine := &Engine{}
	engine.db = makeDB(config.Properties.Shards)
	if config.Properties.AppendOnly {
		aofHandler, err := aof.NewAofHandler(engine)
		if err != nil {
			logger.Fatal("aof:", err)
		}
		engine.aofHandler = aofHandler
		engine.db.addAof = func(line CmdLine) {
			aofHandler.AddAof(line)
		}
	}
	return engine
}

// Exec executes one command array against the engine
func (engine *Engine) Exec(client resp.Connection, args [][]byte) (result resp.Reply) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error(err)
			result = &reply.UnknownErrReply{}
		}
	}()
	if len(args) == 0 {
		return reply.MakeErrReply("ERR empty command")
	}
	return engine.db.Exec(client, args)
}

// Close shuts the aof handler down, draining and syncing pending records
func (engine *Engine) Close() {
	if engine.aofHandler != nil {
		engine.aofHandler.Close()
	}
}

// AfterClientClose does the cleanup after a client close, nothing for now
func (engine *Engine) AfterClientClose(c resp.Connection) {
}
