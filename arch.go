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
	"fmt"
)

// Arch captures the endianness, bitness, and machine of an ELF file, drawn
// from its ELF header. The output of a preload transform reuses the Arch
// of its input.
type Arch struct {
	class   elf.Class
	data    elf.Data
	machine elf.Machine
}

func newArch(fh *elf.FileHeader) (Arch, error) {
	switch fh.Class {
	case elf.ELFCLASS32, elf.ELFCLASS64:
	default:
		return Arch{}, errInvalidElf(fmt.Sprintf("unsupported ELF class %v", fh.Class))
	}
	switch fh.Data {
	case elf.ELFDATA2LSB, elf.ELFDATA2MSB:
	default:
		return Arch{}, errInvalidElf(fmt.Sprintf("unsupported ELF data encoding %v", fh.Data))
	}
	return Arch{class: fh.Class, data: fh.Data, machine: fh.Machine}, nil
}

// Is64 reports whether this is a 64-bit ELF class.
func (a Arch) Is64() bool {
	return a.class == elf.ELFCLASS64
}

// ByteOrder returns the byte order implied by this Arch's endianness.
func (a Arch) ByteOrder() binary.ByteOrder {
	if a.data == elf.ELFDATA2MSB {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// bigEndian reports whether this Arch is big-endian.
func (a Arch) bigEndian() bool {
	return a.data == elf.ELFDATA2MSB
}

// Machine returns the ELF machine code (e.g. EM_X86_64) for this Arch.
func (a Arch) Machine() elf.Machine {
	return a.machine
}

// Class returns the ELF class (32-bit or 64-bit) for this Arch.
func (a Arch) Class() elf.Class {
	return a.class
}

// headerSize is the on-disk size of the ELF header for this Arch.
func (a Arch) headerSize() uint64 {
	if a.Is64() {
		return 64
	}
	return 52
}

// progHeaderSize is the on-disk size of one program header for this Arch.
func (a Arch) progHeaderSize() uint64 {
	if a.Is64() {
		return 56
	}
	return 32
}

// String renders the Arch the way the original elf-preload crate's
// Display impl does: "<bitness>, <endianness>, <machine>".
func (a Arch) String() string {
	size := "32 bit"
	if a.Is64() {
		size = "64 bit"
	}
	endian := "little endian"
	if a.data == elf.ELFDATA2MSB {
		endian = "big endian"
	}
	return fmt.Sprintf("%s, %s, %s", size, endian, a.machine)
}
