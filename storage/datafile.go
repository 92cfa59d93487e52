package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const (
	DataFileName = "data"

	DefaultInitialSize = 64 * 1024 * 1024
	DefaultGrowSize    = 4 * 1024 * 1024

	// Unallocated asks Write to append at the cursor.
	Unallocated = uint64(math.MaxUint64)

	lenSize = 8
)

var (
	ErrSlotOverflow = errors.New("record does not fit in its slot")
	ErrOutOfBounds  = errors.New("offset out of bounds")
	ErrClosed       = errors.New("data file is closed")
)

type Options struct {
	InitialSize int64
	GrowSize    int64
}

func (o Options) withDefaults() Options {
	if o.InitialSize <= 0 {
		o.InitialSize = DefaultInitialSize
	}
	if o.GrowSize <= 0 {
		o.GrowSize = DefaultGrowSize
	}
	return o
}

// DataFile is an append-only, memory mapped file of length prefixed records:
//
//	[len u64 LE][payload] [len u64 LE][payload] ...
//
// Records are never removed. A record may be overwritten in place by a payload
// of the same or smaller length.
type DataFile struct {
	dir     string
	file    *os.File
	mapped  []byte
	cursor  uint64
	options Options

	// OnGrow, when set, is called after every remap with the new size.
	OnGrow func(size int64)
}

// Open creates dir if needed and a fresh, empty data file inside it.
func Open(dir string, options Options) (*DataFile, error) {

	options = options.withDefaults()

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, DataFileName), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}

	d := &DataFile{
		dir:     dir,
		file:    f,
		options: options,
	}

	err = d.remap(options.InitialSize)
	if err != nil {
		f.Close()
		return nil, err
	}

	return d, nil
}

func (d *DataFile) remap(size int64) error {

	if d.mapped != nil {
		err := unix.Munmap(d.mapped)
		if err != nil {
			return fmt.Errorf("munmap: %w", err)
		}
		d.mapped = nil
	}

	err := d.file.Truncate(size)
	if err != nil {
		return fmt.Errorf("truncate to %d: %w", size, err)
	}

	m, err := unix.Mmap(int(d.file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	d.mapped = m

	return nil
}

func (d *DataFile) grow(need uint64) error {

	size := int64(len(d.mapped))
	for uint64(size) < need {
		size += d.options.GrowSize
	}

	err := d.remap(size)
	if err != nil {
		return fmt.Errorf("grow: %w", err)
	}

	if d.OnGrow != nil {
		d.OnGrow(size)
	}

	return nil
}

// LenAt returns the payload length stored at offset.
func (d *DataFile) LenAt(offset uint64) (uint64, error) {

	if d.mapped == nil {
		return 0, ErrClosed
	}

	if offset > d.cursor || d.cursor-offset < lenSize {
		return 0, fmt.Errorf("%w: offset %d, cursor %d", ErrOutOfBounds, offset, d.cursor)
	}

	l := binary.LittleEndian.Uint64(d.mapped[offset : offset+lenSize])
	if l > d.cursor-offset-lenSize {
		return 0, fmt.Errorf("%w: record of %d bytes at %d exceeds cursor %d", ErrOutOfBounds, l, offset, d.cursor)
	}

	return l, nil
}

// Read returns a copy of the payload stored at offset.
func (d *DataFile) Read(offset uint64) ([]byte, error) {

	l, err := d.LenAt(offset)
	if err != nil {
		return nil, err
	}

	start := offset + lenSize
	payload := make([]byte, l)
	copy(payload, d.mapped[start:start+l])

	return payload, nil
}

// Write stores payload at offset, or appends it when offset is Unallocated.
// It returns the offset where the record starts.
func (d *DataFile) Write(payload []byte, offset uint64) (uint64, error) {

	if d.mapped == nil {
		return 0, ErrClosed
	}

	l := uint64(len(payload))

	if offset == Unallocated {
		offset = d.cursor
		end := offset + lenSize + l
		if end > uint64(len(d.mapped)) {
			err := d.grow(end)
			if err != nil {
				return 0, err
			}
		}
		d.cursor = end
	} else {
		current, err := d.LenAt(offset)
		if err != nil {
			return 0, err
		}
		if l > current {
			return 0, fmt.Errorf("%w: %d bytes into a slot of %d at offset %d", ErrSlotOverflow, l, current, offset)
		}
	}

	binary.LittleEndian.PutUint64(d.mapped[offset:offset+lenSize], l)
	copy(d.mapped[offset+lenSize:], payload)

	return offset, nil
}

// Relocate records that the directory holding the file was renamed. The open
// descriptor and the mapping are not affected by a rename.
func (d *DataFile) Relocate(dir string) {
	d.dir = dir
}

func (d *DataFile) Dir() string {
	return d.dir
}

func (d *DataFile) Path() string {
	return filepath.Join(d.dir, DataFileName)
}

// Size is the current mapped (and file) size.
func (d *DataFile) Size() int64 {
	return int64(len(d.mapped))
}

// Cursor is the offset where the next appended record will start.
func (d *DataFile) Cursor() uint64 {
	return d.cursor
}

func (d *DataFile) Sync() error {
	if d.mapped == nil {
		return ErrClosed
	}
	return unix.Msync(d.mapped, unix.MS_SYNC)
}

func (d *DataFile) Close() error {

	if d.file == nil {
		return nil
	}

	var lastErr error
	if d.mapped != nil {
		err := unix.Munmap(d.mapped)
		if err != nil {
			lastErr = fmt.Errorf("munmap: %w", err)
		}
		d.mapped = nil
	}

	err := d.file.Close()
	if err != nil {
		lastErr = fmt.Errorf("close: %w", err)
	}
	d.file = nil

	return lastErr
}
