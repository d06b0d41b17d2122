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

func TestNewArch(t *testing.T) {
	testcases := []struct {
		label    string
		class    elf.Class
		data     elf.Data
		wantErr  bool
		wantIs64 bool
	}{
		{"64 bit LSB", elf.ELFCLASS64, elf.ELFDATA2LSB, false, true},
		{"32 bit LSB", elf.ELFCLASS32, elf.ELFDATA2LSB, false, false},
		{"64 bit MSB", elf.ELFCLASS64, elf.ELFDATA2MSB, false, true},
		{"unknown class", elf.ELFCLASSNONE, elf.ELFDATA2LSB, true, false},
		{"unknown data", elf.ELFCLASS64, elf.ELFDATANONE, true, false},
	}

	for _, tc := range testcases {
		t.Run(tc.label, func(t *testing.T) {
			fh := &elf.FileHeader{Class: tc.class, Data: tc.data, Machine: elf.EM_X86_64}
			arch, err := newArch(fh)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("newArch(%v): want error, got nil", fh)
				}
				return
			}
			if err != nil {
				t.Fatalf("newArch(%v): unexpected error: %v", fh, err)
			}
			if arch.Is64() != tc.wantIs64 {
				t.Errorf("Is64() = %v, want %v", arch.Is64(), tc.wantIs64)
			}
		})
	}
}

func TestArchByteOrder(t *testing.T) {
	lsb := Arch{class: elf.ELFCLASS64, data: elf.ELFDATA2LSB}
	if lsb.ByteOrder() != binary.LittleEndian {
		t.Errorf("ByteOrder() for LSB = %v, want LittleEndian", lsb.ByteOrder())
	}
	msb := Arch{class: elf.ELFCLASS64, data: elf.ELFDATA2MSB}
	if msb.ByteOrder() != binary.BigEndian {
		t.Errorf("ByteOrder() for MSB = %v, want BigEndian", msb.ByteOrder())
	}
}

func TestArchSizes(t *testing.T) {
	a64 := Arch{class: elf.ELFCLASS64}
	if got, want := a64.headerSize(), uint64(64); got != want {
		t.Errorf("64-bit headerSize() = %d, want %d", got, want)
	}
	if got, want := a64.progHeaderSize(), uint64(56); got != want {
		t.Errorf("64-bit progHeaderSize() = %d, want %d", got, want)
	}

	a32 := Arch{class: elf.ELFCLASS32}
	if got, want := a32.headerSize(), uint64(52); got != want {
		t.Errorf("32-bit headerSize() = %d, want %d", got, want)
	}
	if got, want := a32.progHeaderSize(), uint64(32); got != want {
		t.Errorf("32-bit progHeaderSize() = %d, want %d", got, want)
	}
}

func TestArchString(t *testing.T) {
	a := Arch{class: elf.ELFCLASS64, data: elf.ELFDATA2LSB, machine: elf.EM_X86_64}
	want := "64 bit, little endian, EM_X86_64"
	if got := a.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
