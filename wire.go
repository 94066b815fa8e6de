package xwire

import "encoding/binary"

// All multi-byte integers on the wire are big-endian ("network order").

func get16(buf []byte) uint16 { return binary.BigEndian.Uint16(buf) }
func get32(buf []byte) uint32 { return binary.BigEndian.Uint32(buf) }

func put16(buf []byte, v uint16) { binary.BigEndian.PutUint16(buf, v) }
func put32(buf []byte, v uint32) { binary.BigEndian.PutUint32(buf, v) }

// pad4 rounds n up to the next multiple of 4.
func pad4(n int) int { return (n + 3) &^ 3 }
