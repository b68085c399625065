package reply

// UnknownErrReply represents an unknown internal error
type UnknownErrReply struct{}

var unknownErrBytes = []byte("-ERR unknown\r\n")

func (r *UnknownErrReply) Error() string {
	return "ERR unknown"
}

// ToBytes marshal redis.Reply
func (r *UnknownErrReply) ToBytes() []byte {
	return unknownErrBytes
}

// ArgNumErrReply represents wrong number of arguments for a command
type ArgNumErrReply struct {
	Cmd string
}

// MakeArgNumErrReply creates ArgNumErrReply
func MakeArgNumErrReply(cmd string) *ArgNumErrReply {
	return &ArgNumErrReply{
		Cmd: cmd,
	}
}

func (r *ArgNumErrReply) Error() string {
	return "ERR wrong number of arguments for '" + r.Cmd + "' command"
}

// ToBytes marshal redis.Reply
func (r *ArgNumErrReply) ToBytes() []byte {
	return []byte("-ERR wrong number of arguments for '" + r.Cmd + "' command\r\n")
}

// UnknownCmdErrReply represents an unrecognized command name
type UnknownCmdErrReply struct {
	Cmd string
}

var unknownCmdErrBytes = []byte("-ERR unknown command\r\n")

// MakeUnknownCmdErrReply creates UnknownCmdErrReply
func MakeUnknownCmdErrReply(cmd string) *UnknownCmdErrReply {
	return &UnknownCmdErrReply{
		Cmd: cmd,
	}
}

func (r *UnknownCmdErrReply) Error() string {
	return "ERR unknown command '" + r.Cmd + "'"
}

// ToBytes marshal redis.Reply
func (r *UnknownCmdErrReply) ToBytes() []byte {
	return unknownCmdErrBytes
}

// NotIntegerErrReply covers INCR on values that do not parse or overflow
type NotIntegerErrReply struct{}

var notIntegerErrBytes = []byte("-ERR value is not an integer or out of range\r\n")

var theNotIntegerErrReply = &NotIntegerErrReply{}

// MakeNotIntegerErrReply creates NotIntegerErrReply
func MakeNotIntegerErrReply() *NotIntegerErrReply {
	return theNotIntegerErrReply
}

func (r *NotIntegerErrReply) Error() string {
	return "ERR value is not an integer or out of range"
}

// ToBytes marshal redis.Reply
func (r *NotIntegerErrReply) ToBytes() []byte {
	return notIntegerErrBytes
}

// NoSuchKeyErrReply is returned by RENAME with a missing source key
type NoSuchKeyErrReply struct{}

var noSuchKeyErrBytes = []byte("-ERR no such key\r\n")

var theNoSuchKeyErrReply = &NoSuchKeyErrReply{}

// MakeNoSuchKeyErrReply creates NoSuchKeyErrReply
func MakeNoSuchKeyErrReply() *NoSuchKeyErrReply {
	return theNoSuchKeyErrReply
}

func (r *NoSuchKeyErrReply) Error() string {
	return "ERR no such key"
}

// ToBytes marshal redis.Reply
func (r *NoSuchKeyErrReply) ToBytes() []byte {
	return noSuchKeyErrBytes
}

// SyntaxErrReply represents meeting unexpected arguments
type SyntaxErrReply struct{}

var syntaxErrBytes = []byte("-ERR syntax error\r\n")
var theSyntaxErrReply = &SyntaxErrReply{}

// MakeSyntaxErrReply creates syntax error
func MakeSyntaxErrReply() *SyntaxErrReply {
	return theSyntaxErrReply
}

func (r *SyntaxErrReply) Error() string {
	return "ERR syntax error"
}

// ToBytes marshal redis.Reply
func (r *SyntaxErrReply) ToBytes() []byte {
	return syntaxErrBytes
}

// ProtocolErrReply represents meeting unexpected bytes during parsing
type ProtocolErrReply struct {
	Msg string
}

// MakeProtocolErrReply creates ProtocolErrReply
func MakeProtocolErrReply(msg string) *ProtocolErrReply {
	return &ProtocolErrReply{
		Msg: msg,
	}
}

func (r *ProtocolErrReply) Error() string {
	return "ERR Protocol error: " + r.Msg
}

// ToBytes marshal redis.Reply
func (r *ProtocolErrReply) ToBytes() []byte {
	return []byte("-ERR Protocol error: " + r.Msg + "\r\n")
}
