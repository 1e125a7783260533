package resp

import (
	"bufio"
	"io"

	"github.com/nodeklenzurr/redisq/redis"
	"github.com/nodeklenzurr/redisq/rediserr"
)

// Read consumes exactly one RESP value from b and returns it as a
// redis.Reply: string for a simple string, int64 for an integer, []byte
// for a bulk string, nil for a nil bulk/array, []interface{} for an
// array, or an *errorx.Error (via rediserr.ResultType) for a RESP error
// reply.
//
// A read or framing failure returns an *errorx.Error carrying the
// rediserr.Connectivity trait (IOType) or the rediserr.Decode trait
// (DecodeType); the caller must treat either as fatal to the connection
// regardless of what the pending action was waiting on, since a failed
// read leaves the stream desynchronized for everything after it.
func Read(b *bufio.Reader) redis.Reply {
	line, isPrefix, err := b.ReadLine()
	if err != nil {
		return rediserr.IOType.Wrap(err, "reading reply header")
	}
	if isPrefix {
		return rediserr.DecodeType.New("reply header line too long")
	}
	if len(line) == 0 {
		return rediserr.DecodeType.New("empty reply header line")
	}

	switch line[0] {
	case '+':
		return string(line[1:])
	case '-':
		return rediserr.ResultType.New("%s", string(line[1:]))
	case ':':
		v, err := parseInt(line[1:])
		if err != nil {
			return err
		}
		return v
	case '$':
		n, err := parseInt(line[1:])
		if err != nil {
			return err
		}
		if n < 0 {
			return nil
		}
		buf := make([]byte, n+2)
		if _, err := io.ReadFull(b, buf); err != nil {
			return rediserr.IOType.Wrap(err, "reading bulk string body")
		}
		if buf[n] != '\r' || buf[n+1] != '\n' {
			return rediserr.DecodeType.New("bulk string missing final CRLF")
		}
		return buf[:n:n]
	case '*':
		n, err := parseInt(line[1:])
		if err != nil {
			return err
		}
		if n < 0 {
			return nil
		}
		arr := make([]interface{}, n)
		for i := range arr {
			arr[i] = Read(b)
			if rediserr.IsFatal(asError(arr[i])) {
				return arr[i]
			}
		}
		return arr
	default:
		return rediserr.DecodeType.New("unknown reply header type %q", line[0])
	}
}

func asError(v redis.Reply) error {
	if err, ok := v.(error); ok {
		return err
	}
	return nil
}

func parseInt(buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, rediserr.DecodeType.New("empty integer field")
	}
	neg := buf[0] == '-'
	if neg {
		buf = buf[1:]
	}
	if len(buf) == 0 {
		return 0, rediserr.DecodeType.New("malformed integer field")
	}
	var v int64
	for _, c := range buf {
		if c < '0' || c > '9' {
			return 0, rediserr.DecodeType.New("malformed integer field %q", buf)
		}
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return v, nil
}

// Error returns v itself if it is an error (RESP error reply or a core
// read failure), nil otherwise.
func Error(v redis.Reply) error {
	e, _ := v.(error)
	return e
}

// IsResultError reports whether v is a RESP error reply as opposed to a
// core (fatal) failure.
func IsResultError(v redis.Reply) bool {
	err := Error(v)
	return err != nil && !rediserr.IsFatal(err)
}
