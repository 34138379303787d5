// Package ring implements the lock-free single-producer/single-consumer
// event buffer: a fixed-capacity array of fixed-size records that the
// owning goroutine appends to and the logger drains, with overload
// handled by dropping the newest record and counting it rather than
// blocking the producer.
package ring

import "encoding/binary"

// Kind distinguishes the shapes a Record can take.
type Kind uint32

const (
	// KindStack is a completed-call latency sample (LDB_EVENT_STACK).
	KindStack Kind = iota + 1
	KindMutexWait
	KindMutexLock
	KindMutexUnlock
	KindTagSet
	KindTagUnset
	KindTagClear
	KindTagBlock
	KindJoinWait
	KindJoinJoined
	KindThreadCreate
	KindThreadExit
)

// RecordSize is the on-disk and in-memory size of a Record: four u32
// fields plus three u64 fields, 40 bytes total (see DESIGN.md for the
// 32-vs-40-byte sizing note).
const RecordSize = 40

// Record is one event: kind, sec, nsec, tid, then three opaque 64-bit
// argument words whose meaning depends on Kind (frame tag, generation,
// return PC, mutex address, wait duration, ...).
type Record struct {
	Kind Kind
	Sec  uint32
	Nsec uint32
	Tid  uint32
	Arg1 uint64
	Arg2 uint64
	Arg3 uint64
}

// MarshalBinary encodes r in little-endian, RecordSize bytes, matching
// a C `struct ldb_event_entry` wire layout byte-for-byte.
func (r Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.Kind))
	binary.LittleEndian.PutUint32(buf[4:8], r.Sec)
	binary.LittleEndian.PutUint32(buf[8:12], r.Nsec)
	binary.LittleEndian.PutUint32(buf[12:16], r.Tid)
	binary.LittleEndian.PutUint64(buf[16:24], r.Arg1)
	binary.LittleEndian.PutUint64(buf[24:32], r.Arg2)
	binary.LittleEndian.PutUint64(buf[32:40], r.Arg3)
	return buf, nil
}

// UnmarshalBinary decodes a RecordSize-byte buffer produced by
// MarshalBinary.
func (r *Record) UnmarshalBinary(buf []byte) error {
	if len(buf) < RecordSize {
		return errShortBuffer
	}
	r.Kind = Kind(binary.LittleEndian.Uint32(buf[0:4]))
	r.Sec = binary.LittleEndian.Uint32(buf[4:8])
	r.Nsec = binary.LittleEndian.Uint32(buf[8:12])
	r.Tid = binary.LittleEndian.Uint32(buf[12:16])
	r.Arg1 = binary.LittleEndian.Uint64(buf[16:24])
	r.Arg2 = binary.LittleEndian.Uint64(buf[24:32])
	r.Arg3 = binary.LittleEndian.Uint64(buf[32:40])
	return nil
}
