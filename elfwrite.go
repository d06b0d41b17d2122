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

// writeELFHeader serializes an ELF header for arch into out, which must be
// exactly arch.headerSize() bytes. The header describes an ET_EXEC file
// with no section headers (e_shoff, e_shnum, e_shentsize, e_shstrndx are
// all zero), entry point entry, and phnum program headers starting at file
// offset phoff.
func writeELFHeader(out []byte, arch Arch, entry, phoff uint64, phnum int) {
	order := arch.ByteOrder()

	out[0] = 0x7f
	out[1] = 'E'
	out[2] = 'L'
	out[3] = 'F'
	if arch.Is64() {
		out[4] = byte(elf.ELFCLASS64)
	} else {
		out[4] = byte(elf.ELFCLASS32)
	}
	if arch.bigEndian() {
		out[5] = byte(elf.ELFDATA2MSB)
	} else {
		out[5] = byte(elf.ELFDATA2LSB)
	}
	out[6] = byte(elf.EV_CURRENT)
	// out[7] (EI_OSABI) and out[8] (EI_ABIVERSION) stay zero (ELFOSABI_NONE).
	// out[9:16] is padding and stays zero.

	order.PutUint16(out[16:18], uint16(elf.ET_EXEC))
	order.PutUint16(out[18:20], uint16(arch.Machine()))
	order.PutUint32(out[20:24], uint32(elf.EV_CURRENT))

	if arch.Is64() {
		order.PutUint64(out[24:32], entry)
		order.PutUint64(out[32:40], phoff)
		order.PutUint64(out[40:48], 0) // e_shoff
		order.PutUint32(out[48:52], 0) // e_flags
		order.PutUint16(out[52:54], uint16(arch.headerSize()))
		order.PutUint16(out[54:56], uint16(arch.progHeaderSize()))
		order.PutUint16(out[56:58], uint16(phnum))
		order.PutUint16(out[58:60], 0) // e_shentsize
		order.PutUint16(out[60:62], 0) // e_shnum
		order.PutUint16(out[62:64], 0) // e_shstrndx
	} else {
		order.PutUint32(out[24:28], uint32(entry))
		order.PutUint32(out[28:32], uint32(phoff))
		order.PutUint32(out[32:36], 0) // e_shoff
		order.PutUint32(out[36:40], 0) // e_flags
		order.PutUint16(out[40:42], uint16(arch.headerSize()))
		order.PutUint16(out[42:44], uint16(arch.progHeaderSize()))
		order.PutUint16(out[44:46], uint16(phnum))
		order.PutUint16(out[46:48], 0) // e_shentsize
		order.PutUint16(out[48:50], 0) // e_shnum
		order.PutUint16(out[50:52], 0) // e_shstrndx
	}
}

// writeProgHeader serializes one program header for arch into out, which
// must be exactly arch.progHeaderSize() bytes.
func writeProgHeader(out []byte, arch Arch, ph elf.ProgHeader) {
	order := arch.ByteOrder()

	if arch.Is64() {
		order.PutUint32(out[0:4], uint32(ph.Type))
		order.PutUint32(out[4:8], uint32(ph.Flags))
		order.PutUint64(out[8:16], ph.Off)
		order.PutUint64(out[16:24], ph.Vaddr)
		order.PutUint64(out[24:32], ph.Paddr)
		order.PutUint64(out[32:40], ph.Filesz)
		order.PutUint64(out[40:48], ph.Memsz)
		order.PutUint64(out[48:56], ph.Align)
		return
	}

	order.PutUint32(out[0:4], uint32(ph.Type))
	order.PutUint32(out[4:8], uint32(ph.Off))
	order.PutUint32(out[8:12], uint32(ph.Vaddr))
	order.PutUint32(out[12:16], uint32(ph.Paddr))
	order.PutUint32(out[16:20], uint32(ph.Filesz))
	order.PutUint32(out[20:24], uint32(ph.Memsz))
	order.PutUint32(out[24:28], uint32(ph.Flags))
	order.PutUint32(out[28:32], uint32(ph.Align))
}
