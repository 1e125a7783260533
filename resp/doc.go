/*
Package resp implements the wire-level RESP-2 codec used by redisconn:
encoding a command and its arguments into a request buffer, and decoding
one reply at a time from a buffered reader.

It knows nothing about queues, sinks or connection state - it is a
standalone codec that redisconn calls into, not a participant in its
concurrency model.
*/
package resp
