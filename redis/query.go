package redis

import (
	"fmt"
	"strconv"
)

// Query is an ordered sequence of byte strings; argv[0] is the command
// name. It is immutable once submitted to a Connection.
type Query [][]byte

// Queries is an ordered, order-significant sequence of Query.
type Queries []Query

// Reply mirrors one RESP value: string (simple string), []byte (bulk
// string), int64 (integer), []interface{} (array), nil (nil bulk/array)
// or error (a RESP error reply, see package doc).
type Reply interface{}

// Replies holds one Reply per Query of a submitted batch, in order.
type Replies []Reply

// Command builds a Query from a command name and arguments of any
// supported type (nil, []byte, string, bool, integer and float kinds).
func Command(cmd string, args ...interface{}) Query {
	q := make(Query, 1, len(args)+1)
	q[0] = []byte(cmd)
	for _, a := range args {
		q = append(q, argBytes(a))
	}
	return q
}

func argBytes(a interface{}) []byte {
	switch v := a.(type) {
	case nil:
		return []byte{}
	case []byte:
		return v
	case string:
		return []byte(v)
	case int:
		return strconv.AppendInt(nil, int64(v), 10)
	case int8:
		return strconv.AppendInt(nil, int64(v), 10)
	case int16:
		return strconv.AppendInt(nil, int64(v), 10)
	case int32:
		return strconv.AppendInt(nil, int64(v), 10)
	case int64:
		return strconv.AppendInt(nil, v, 10)
	case uint:
		return strconv.AppendUint(nil, uint64(v), 10)
	case uint8:
		return strconv.AppendUint(nil, uint64(v), 10)
	case uint16:
		return strconv.AppendUint(nil, uint64(v), 10)
	case uint32:
		return strconv.AppendUint(nil, uint64(v), 10)
	case uint64:
		return strconv.AppendUint(nil, v, 10)
	case float32:
		return strconv.AppendFloat(nil, float64(v), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(nil, v, 'f', -1, 64)
	case bool:
		if v {
			return []byte{'1'}
		}
		return []byte{'0'}
	default:
		panic(fmt.Sprintf("redis.Command: unsupported argument type %T", a))
	}
}

// Name returns the command name, argv[0], as a string.
func (q Query) Name() string {
	if len(q) == 0 {
		return ""
	}
	return string(q[0])
}
