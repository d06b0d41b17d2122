// Copyright 2014 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package elfpreload

import (
	"debug/elf"
)

// Layout is the computed layout of a preloaded output ELF file: the input
// program headers it was derived from, the output program headers it
// produced, the architecture and entry point carried over from the input,
// and the input bytes those output segments will be materialized from.
//
// A Layout is created by Input.Layout and is immutable; it may be shared
// read-only across however many OutputWriter leaves are spawned from it.
type Layout struct {
	arch    Arch
	entry   uint64
	inPhdr  []elf.ProgHeader
	outPhdr []elf.ProgHeader
	data    []byte
}

// OutSegments returns the number of independently writable output slices:
// one "header block" slice (the synthetic PT_PHDR, the synthetic first
// PT_LOAD, and any padding between them) plus one slice per input PT_LOAD.
func (l *Layout) OutSegments() int {
	return len(l.inPhdr) + 1
}

// translate maps an output segment index (0 = header block, 1..N = user
// PT_LOADs) to an index into outPhdr (0 = PT_PHDR, 1 = first PT_LOAD,
// 2..N+1 = per-input PT_LOADs).
func translate(segment int) int {
	if segment == 0 {
		return 1
	}
	return segment + 1
}

// SegmentSize returns the size in bytes of output slice segment.
func (l *Layout) SegmentSize(segment int) int {
	return int(l.outPhdr[translate(segment)].Filesz)
}

// RequiredSize returns the total size in bytes of the output file: the sum
// of the file sizes of every output PT_LOAD.
func (l *Layout) RequiredSize() int {
	total := 0
	for _, ph := range l.outPhdr {
		if ph.Type == elf.PT_LOAD {
			total += int(ph.Filesz)
		}
	}
	return total
}

// WriteSegment materializes output segment into out, which must be exactly
// SegmentSize(segment) bytes.
//
// Segment 0 is the ELF header followed immediately by the full output
// program-header table (the synthetic PT_PHDR, the synthetic first
// PT_LOAD, and one entry per input PT_LOAD); any bytes of the slice beyond
// the header table are set to zero.
//
// Segment i >= 1 copies the corresponding input PT_LOAD's file bytes to the
// start of out and zero-fills the remainder — the portion of out beyond
// the input segment's file size is what was implicit BSS in the input and
// is now materialized on disk.
func (l *Layout) WriteSegment(segment int, out []byte) error {
	if segment == 0 {
		return l.writeHeaderBlock(out)
	}

	inH := l.inPhdr[segment-1]

	n := copy(out, sectionBytes(l.data, inH))
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return nil
}

func (l *Layout) writeHeaderBlock(out []byte) error {
	headerSize := l.arch.headerSize()
	phdrSize := l.arch.progHeaderSize()

	writeELFHeader(out[:headerSize], l.arch, l.entry, headerSize, len(l.outPhdr))

	off := headerSize
	for _, ph := range l.outPhdr {
		writeProgHeader(out[off:off+phdrSize], l.arch, ph)
		off += phdrSize
	}

	for i := off; i < uint64(len(out)); i++ {
		out[i] = 0
	}
	return nil
}

// sectionBytes returns the input file bytes covered by ph's file range,
// clamped to ph.Filesz (the portion of the segment actually backed by file
// content, as opposed to implicit BSS).
func sectionBytes(data []byte, ph elf.ProgHeader) []byte {
	start := ph.Off
	end := start + ph.Filesz
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	if start > end {
		start = end
	}
	return data[start:end]
}

// Output prepares buf, which must be at least RequiredSize bytes, to
// receive the materialized output file. The returned OutputWriter covers
// every output segment; splitting it distributes the writes of those
// segments across disjoint sub-slices of buf[:RequiredSize()].
func (l *Layout) Output(buf []byte) (*OutputWriter, error) {
	required := l.RequiredSize()
	if len(buf) < required {
		return nil, errOutputTooSmall()
	}
	return &OutputWriter{
		layout: l,
		lo:     0,
		hi:     l.OutSegments(),
		buf:    buf[:required],
	}, nil
}
