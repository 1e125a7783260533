/*
Package redisconn implements a single pipelined connection to one
redis-server instance: a write loop and a read loop, each running in its
own goroutine, connected by a shared set of queues that let any number
of caller goroutines submit queries without waiting for each other's
writes or reads to finish.

# Ordering and the write queue

Submissions are appended to the write queue in the order callers call
FireAndForgetQuery, FireAndForgetQueries, GetResultOfQuery or
GetResultsOfQueries. The write loop drains and writes them in that same
order, so two submissions from the same calling goroutine always reach
the wire in the order they were submitted; submissions from different
goroutines interleave in whatever order they happen to enqueue.

This has one consequence callers of AUTH- or SELECT-protected servers
need to know about: because Connection does not itself know a password
or database index requires anything special, it is the caller's
responsibility to issue AUTH and SELECT as FireAndForgetQueries
immediately after Start returns, and to hold off on any other query
until those two have been submitted. As long as nothing else races the
first submission, FIFO ordering guarantees the handshake queries land on
the wire before anything else on the first session. Submissions are
written once and never replayed, so a session opened by a later
reconnect does not see AUTH or SELECT unless the caller submits them
again. Config.Password and
Config.DB are carried purely as documentation of intent for callers that
want to build this handshake generically; Connection itself never reads
them.

# Failure model

A write failure fails the submission it happened on (and, for a batch,
the queries after the failure point within that same batch are not
written). A partial write leaves the wire desynchronized, so a write
failure also tears the session down and fails every other outstanding
submission, including those already on the wire. A read or decode
failure is likewise always fatal to the whole session: once one reply's
framing cannot be trusted, nothing after it in the stream can be
trusted either, so every outstanding submission is failed and the
session is torn down. Reconnection then proceeds according to
Config.ReconnectPause.
*/
package redisconn
