package ring

import "errors"

var errShortBuffer = errors.New("ring: buffer shorter than a record")
