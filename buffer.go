package xwire

// receiveBuffer is the client's growable receive buffer. Only two
// operations mutate it: appending freshly read bytes, and discarding a
// prefix once a frame has been decoded from it.
type receiveBuffer struct {
	data []byte
}

func (b *receiveBuffer) append(p []byte) {
	b.data = append(b.data, p...)
}

// advance discards the first n bytes, which must have been consumed by a
// successful parse.
func (b *receiveBuffer) advance(n int) {
	m := copy(b.data, b.data[n:])
	b.data = b.data[:m]
}

func (b *receiveBuffer) bytes() []byte { return b.data }
func (b *receiveBuffer) len() int      { return len(b.data) }
