package journal

import (
	"encoding/binary"
	"fmt"
)

// Record layout, little endian:
//
//	owner [16] | streak u64 | last_logged i64 | created_at i64 |
//	last_idea (u32 len, bytes) | ideas (u32 count, count * (u32 len, bytes, i64 ts))

const ownerSize = 16

// MarshalBinary encodes the journal in its persisted layout.
func (j *Journal) MarshalBinary() ([]byte, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}

	size := ownerSize + 8*3 + 4 + len(j.LastIdea) + 4
	for _, e := range j.Ideas {
		size += 4 + len(e.Text) + 8
	}

	b := make([]byte, 0, size)
	b = append(b, j.Owner[:]...)
	b = binary.LittleEndian.AppendUint64(b, j.Streak)
	b = binary.LittleEndian.AppendUint64(b, uint64(j.LastLogged))
	b = binary.LittleEndian.AppendUint64(b, uint64(j.CreatedAt))
	b = appendString(b, j.LastIdea)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(j.Ideas)))
	for _, e := range j.Ideas {
		b = appendString(b, e.Text)
		b = binary.LittleEndian.AppendUint64(b, uint64(e.Timestamp))
	}
	return b, nil
}

// UnmarshalBinary decodes a record written by MarshalBinary.
func (j *Journal) UnmarshalBinary(data []byte) error {
	r := reader{buf: data}

	var out Journal
	copy(out.Owner[:], r.next(ownerSize))
	out.Streak = r.u64()
	out.LastLogged = int64(r.u64())
	out.CreatedAt = int64(r.u64())
	out.LastIdea = r.str()

	n := r.u32()
	if n > MaxIdeas {
		return fmt.Errorf("%w: %d ideas", ErrCorruptRecord, n)
	}
	out.Ideas = make([]IdeaEntry, 0, MaxIdeas)
	for i := uint32(0); i < n && r.err == nil; i++ {
		text := r.str()
		out.Ideas = append(out.Ideas, IdeaEntry{Text: text, Timestamp: int64(r.u64())})
	}

	if r.err != nil {
		return r.err
	}
	if len(r.buf) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptRecord, len(r.buf))
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*j = out
	return nil
}

func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

type reader struct {
	buf []byte
	err error
}

func (r *reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf) < n {
		r.err = fmt.Errorf("%w: short buffer", ErrCorruptRecord)
		return nil
	}
	p := r.buf[:n]
	r.buf = r.buf[n:]
	return p
}

func (r *reader) u32() uint32 {
	p := r.next(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

func (r *reader) u64() uint64 {
	p := r.next(8)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(p)
}

func (r *reader) str() string {
	n := r.u32()
	if r.err != nil {
		return ""
	}
	if n > MaxIdeaLen {
		r.err = fmt.Errorf("%w: text length %d", ErrCorruptRecord, n)
		return ""
	}
	return string(r.next(int(n)))
}
