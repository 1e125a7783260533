package resp

import "github.com/nodeklenzurr/redisq/redis"

// AppendQuery encodes q onto the end of buf as a RESP array of bulk
// strings and returns the extended buffer. It never fails: q is already
// a sequence of byte strings by construction (redis.Command / raw
// redis.Query), so there is nothing left to validate at this layer.
func AppendQuery(buf []byte, q redis.Query) []byte {
	buf = appendHeader(buf, '*', len(q))
	for _, arg := range q {
		buf = appendHeader(buf, '$', len(arg))
		buf = append(buf, arg...)
		buf = append(buf, '\r', '\n')
	}
	return buf
}

// AppendQueries encodes every query in qs back to back, pipelined, onto
// buf.
func AppendQueries(buf []byte, qs redis.Queries) []byte {
	for _, q := range qs {
		buf = AppendQuery(buf, q)
	}
	return buf
}

func appendHeader(buf []byte, tag byte, n int) []byte {
	buf = append(buf, tag)
	buf = appendInt(buf, int64(n))
	return append(buf, '\r', '\n')
}

func appendInt(buf []byte, i int64) []byte {
	if i == 0 {
		return append(buf, '0')
	}
	if i < 0 {
		buf = append(buf, '-')
		i = -i
	}
	var digits [20]byte
	p := len(digits)
	for i > 0 {
		p--
		digits[p] = byte(i%10) + '0'
		i /= 10
	}
	return append(buf, digits[p:]...)
}
