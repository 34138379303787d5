// Package gid extracts the calling goroutine's runtime id, the
// Go-native substitute for a %fs-relative thread-local self lookup.
// Go exposes no goroutine-local storage, so this parses the id out of
// the header line runtime.Stack() always emits.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns the calling goroutine's runtime-assigned id.
//
// This id is not guaranteed stable API by the runtime, but the
// "goroutine N [state]:" header format has been stable across Go
// releases for years and is the only portal the runtime exposes;
// there is no public alternative. Each call allocates and parses a
// string; shim calls it on every lookup of the current goroutine's
// state (Enter, tag and join events, mutex unlock).
func Current() int64 {
	buf := make([]byte, 64)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			buf = buf[:n]
			break
		}
		buf = make([]byte, 2*len(buf))
	}
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return -1
	}
	id, err := strconv.ParseInt(string(buf[:end]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
