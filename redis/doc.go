/*
Package redis holds the wire-level data model shared by the codec and
the connection: Query/Queries (what gets sent), Reply/Replies (what
comes back), and the Sender contract that redisconn.Connection
implements.

Types accepted as query arguments by Command: nil, []byte, string, bool
(sent as "1" or "0"), and all integer and float kinds. Everything else
is a caller error.

Results are deserialized into plain Go types:

	RESP type    | Go type
	-------------|-------
	simple string| string
	bulk string  | []byte
	integer      | int64
	array        | []interface{}
	error        | error (*errorx.Error, via rediserr.ResultType)

A RESP error reply is not surfaced as the second (error) return value of
Sender's ask methods - it is delivered as an ordinary Reply that happens
to implement the error interface. The second return value is reserved
for core failures (transport, decode, submission).
*/
package redis
