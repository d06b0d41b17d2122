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
	"encoding/binary"
	"testing"
)

// testELF builds the raw bytes of a little-endian, 64-bit ELF file with the
// given type and program headers, for use as test fixture input. Segment
// file content, where a header's Filesz is nonzero, is filled with a fixed
// byte pattern so tests can assert it was copied faithfully.
func testELF(t *testing.T, etype elf.Type, entry uint64, phdrs []elf.ProgHeader) []byte {
	t.Helper()

	const headerSize = 64
	const phdrSize = 56

	phoff := uint64(headerSize)
	size := phoff + uint64(len(phdrs))*phdrSize
	for _, ph := range phdrs {
		if end := ph.Off + ph.Filesz; end > size {
			size = end
		}
	}

	buf := make([]byte, size)
	order := binary.LittleEndian

	buf[0], buf[1], buf[2], buf[3] = 0x7f, 'E', 'L', 'F'
	buf[4] = byte(elf.ELFCLASS64)
	buf[5] = byte(elf.ELFDATA2LSB)
	buf[6] = byte(elf.EV_CURRENT)

	order.PutUint16(buf[16:18], uint16(etype))
	order.PutUint16(buf[18:20], uint16(elf.EM_X86_64))
	order.PutUint32(buf[20:24], uint32(elf.EV_CURRENT))
	order.PutUint64(buf[24:32], entry)
	order.PutUint64(buf[32:40], phoff)
	order.PutUint64(buf[40:48], 0)
	order.PutUint32(buf[48:52], 0)
	order.PutUint16(buf[52:54], headerSize)
	order.PutUint16(buf[54:56], phdrSize)
	order.PutUint16(buf[56:58], uint16(len(phdrs)))
	order.PutUint16(buf[58:60], 0)
	order.PutUint16(buf[60:62], 0)
	order.PutUint16(buf[62:64], 0)

	off := phoff
	for i, ph := range phdrs {
		order.PutUint32(buf[off:off+4], uint32(ph.Type))
		order.PutUint32(buf[off+4:off+8], uint32(ph.Flags))
		order.PutUint64(buf[off+8:off+16], ph.Off)
		order.PutUint64(buf[off+16:off+24], ph.Vaddr)
		order.PutUint64(buf[off+24:off+32], ph.Paddr)
		order.PutUint64(buf[off+32:off+40], ph.Filesz)
		order.PutUint64(buf[off+40:off+48], ph.Memsz)
		order.PutUint64(buf[off+48:off+56], ph.Align)
		off += phdrSize

		for j := uint64(0); j < ph.Filesz; j++ {
			buf[ph.Off+j] = byte(0x10 + i)
		}
	}

	return buf
}

// loadHeader is a shorthand constructor for a PT_LOAD elf.ProgHeader used
// across the test fixtures in this package.
func loadHeader(off, vaddr, paddr, filesz, align uint64) elf.ProgHeader {
	return elf.ProgHeader{
		Type:   elf.PT_LOAD,
		Flags:  elf.PF_R | elf.PF_X,
		Off:    off,
		Vaddr:  vaddr,
		Paddr:  paddr,
		Filesz: filesz,
		Memsz:  filesz,
		Align:  align,
	}
}
