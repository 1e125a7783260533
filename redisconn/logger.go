package redisconn

import (
	"log"

	"github.com/nodeklenzurr/redisq/redis"
)

// LogKind identifies the event passed to Logger.Report.
type LogKind int

const (
	LogConnecting LogKind = iota
	LogConnected
	LogConnectFailed
	LogDisconnected
	LogClosed
	// LogQuery fires once per query handed to FireAndForgetQuery,
	// FireAndForgetQueries, GetResultOfQuery or GetResultsOfQueries,
	// before it is posted to the write queue.
	LogQuery
	// LogDroppedWrite fires when a fire-and-forget write failed and was
	// logged-and-continued rather than surfaced to any caller.
	LogDroppedWrite
)

// Logger is the pluggable logging hook. Report is called synchronously
// from whichever goroutine observed the event; implementations must not
// block.
type Logger interface {
	Report(event LogKind, conn *Connection, v ...interface{})
}

type defaultLogger struct{}

func (defaultLogger) Report(event LogKind, conn *Connection, v ...interface{}) {
	switch event {
	case LogConnecting:
		log.Printf("redisq: connecting to %s", conn.Addr())
	case LogConnected:
		log.Printf("redisq: connected to %s (local %s, remote %s)", conn.Addr(), v[0], v[1])
	case LogConnectFailed:
		log.Printf("redisq: connect to %s failed: %s", conn.Addr(), v[0])
	case LogDisconnected:
		log.Printf("redisq: connection to %s broken: %s", conn.Addr(), v[0])
	case LogClosed:
		log.Printf("redisq: connection to %s closed", conn.Addr())
	case LogQuery:
		log.Printf("redisq: submitting query to %s: %s", conn.Addr(), formatQuery(v[0].(redis.Query)))
	case LogDroppedWrite:
		log.Printf("redisq: fire-and-forget query to %s failed and was dropped: %s", conn.Addr(), v[0])
	default:
		args := append([]interface{}{"redisq: unexpected event", event, conn}, v...)
		log.Print(args...)
	}
}

// formatQuery renders a bounded prefix of a query for logging so a
// giant MSET doesn't flood the log.
func formatQuery(q redis.Query) string {
	const max = 8
	out := ""
	for i, arg := range q {
		if i == max {
			out += " ..."
			break
		}
		out += " '" + string(arg) + "'"
	}
	return out
}
