// Package shm maps the shared-memory audio region the client creates
// and names in its InitAudio request. The region's header, channel
// counts, and buffer offsets are written by the client before the name
// ever reaches this host; this package only validates and maps what it
// finds — it never re-initializes the header.
package shm

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"github.com/rack-audio/vst3host/pkg/hosterr"
	"golang.org/x/sys/unix"
)

// Magic and version match the wire header's expected values. A region
// whose header disagrees was not created by a compatible client and is
// rejected rather than trusted.
const (
	Magic          uint32 = 0x52574153 // 'RWAS'
	Version        uint32 = 1
	headerSize            = 56 // 14 little-endian uint32 fields, see layout below
	reservedFields         = 4
)

// Header mirrors the client-authoritative shared-memory header layout:
//
//	magic, version, num_inputs, num_outputs, block_size, sample_rate,
//	host_ready, client_ready, input_offset, output_offset, reserved[4]
//
// all little-endian uint32, 56 bytes, immediately followed by the input
// channel buffers and then the output channel buffers, each channel a
// contiguous run of block_size float32 samples.
type Header struct {
	Magic        uint32
	Version      uint32
	NumInputs    uint32
	NumOutputs   uint32
	BlockSize    uint32
	SampleRate   uint32
	HostReady    uint32
	ClientReady  uint32
	InputOffset  uint32
	OutputOffset uint32
}

// Size returns the total byte size of the region this header describes.
func (h Header) Size() int {
	return headerSize + int(h.NumInputs+h.NumOutputs)*int(h.BlockSize)*4
}

// Region is a mapped shared-memory audio buffer. Open validates the
// header the client wrote and exposes each channel as a []float32
// slice backed directly by the mapping — no copy happens on read or
// write beyond what the audio engine does when marshalling buffers for
// the foreign ABI call.
type Region struct {
	file *os.File
	data []byte
	hdr  Header
}

// Open opens path (a regular file the client created and sized) and
// maps it read-write. It validates magic/version and that the region is
// at least as large as the header claims, but does not write to the
// header itself — by the time Open is called, the client has already
// filled in every field.
func Open(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open shm %q: %v", hosterr.ErrInvalidParam, path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat shm %q: %v", hosterr.ErrInvalidParam, path, err)
	}
	if info.Size() < headerSize {
		f.Close()
		return nil, fmt.Errorf("%w: shm %q too small for header", hosterr.ErrInvalidParam, path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: mmap shm %q: %v", hosterr.ErrInvalidParam, path, err)
	}

	hdr := readHeader(data)
	if hdr.Magic != Magic {
		unix.Munmap(data)
		f.Close()
		return nil, fmt.Errorf("%w: shm %q bad magic %#x", hosterr.ErrInvalidParam, path, hdr.Magic)
	}
	if hdr.Version != Version {
		unix.Munmap(data)
		f.Close()
		return nil, fmt.Errorf("%w: shm %q unsupported version %d", hosterr.ErrInvalidParam, path, hdr.Version)
	}
	if int64(hdr.Size()) > info.Size() {
		unix.Munmap(data)
		f.Close()
		return nil, fmt.Errorf("%w: shm %q smaller than header declares", hosterr.ErrInvalidParam, path)
	}

	return &Region{file: f, data: data, hdr: hdr}, nil
}

func readHeader(data []byte) Header {
	le := binary.LittleEndian
	return Header{
		Magic:        le.Uint32(data[0:4]),
		Version:      le.Uint32(data[4:8]),
		NumInputs:    le.Uint32(data[8:12]),
		NumOutputs:   le.Uint32(data[12:16]),
		BlockSize:    le.Uint32(data[16:20]),
		SampleRate:   le.Uint32(data[20:24]),
		HostReady:    le.Uint32(data[24:28]),
		ClientReady:  le.Uint32(data[28:32]),
		InputOffset:  le.Uint32(data[32:36]),
		OutputOffset: le.Uint32(data[36:40]),
	}
}

func (r *Region) Header() Header { return r.hdr }

// InputChannel returns the slice backing input channel index, sized
// exactly BlockSize samples.
func (r *Region) InputChannel(index uint32) []float32 {
	return r.channelAt(r.hdr.InputOffset, index)
}

// OutputChannel returns the slice backing output channel index, sized
// exactly BlockSize samples.
func (r *Region) OutputChannel(index uint32) []float32 {
	return r.channelAt(r.hdr.OutputOffset, index)
}

func (r *Region) channelAt(baseOffset, index uint32) []float32 {
	stride := r.hdr.BlockSize * 4
	start := baseOffset + index*stride
	end := start + r.hdr.BlockSize*4
	buf := r.data[start:end:end]
	return unsafe.Slice((*float32)(unsafe.Pointer(&buf[0])), r.hdr.BlockSize)
}

// SetHostReady writes the host-ready flag. The client polls this (or
// blocks on it via its own side channel) to know the output buffers
// are safe to read.
func (r *Region) SetHostReady(ready bool) {
	binary.LittleEndian.PutUint32(r.data[24:28], boolToU32(ready))
}

// ClientReady reads the client-ready flag: true once the client has
// finished writing this block's input buffers.
func (r *Region) ClientReady() bool {
	return binary.LittleEndian.Uint32(r.data[28:32]) != 0
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Close unmaps the region and closes the backing file descriptor. It is
// idempotent-unsafe: the caller (pkg/protocol's Server) must not call it twice on
// the same Region, matching every other teardown step in this host.
func (r *Region) Close() error {
	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("shm: munmap: %w", err)
	}
	return r.file.Close()
}
