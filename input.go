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
	"bytes"
	"debug/elf"
	"sort"
)

// Input is a parsed, validated ELF executable: the subset of an ELF file
// needed to compute a preload Layout. A valid Input satisfies three
// constraints: it is an executable ELF file (not a shared library or
// relocatable object), it contains no PT_DYNAMIC program header, and it
// contains no PT_INTERP program header.
type Input struct {
	arch  Arch
	entry uint64
	phdr  []elf.ProgHeader
	data  []byte
}

// NewInput parses data as an ELF file and validates it for preloading.
//
// It returns a *Error with Kind BadElf if data cannot be parsed as an ELF
// file, or Kind InvalidElf if it parses but fails one of the constraints
// described on Input.
func NewInput(data []byte) (*Input, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, errBadElf(err)
	}

	if err := verify(f); err != nil {
		return nil, err
	}

	arch, err := newArch(&f.FileHeader)
	if err != nil {
		return nil, err
	}

	return &Input{
		arch:  arch,
		entry: f.Entry,
		phdr:  sortedLoadHeaders(f),
		data:  data,
	}, nil
}

// Arch returns the architecture (endianness, bitness, machine) of the
// parsed input.
func (in *Input) Arch() Arch {
	return in.arch
}

// Layout computes the output program-header table for strategy.
//
// For the FromInput strategy, Layout additionally requires that the input's
// PT_LOAD segments are physically dense (no gap between adjacent segments
// larger than PageSize) and that the lowest physical address leaves at
// least PageSize of room for the synthesized header segment. SpecifiedStart
// has no additional requirements.
func (in *Input) Layout(strategy LayoutStrategy) (*Layout, error) {
	if strategy.kind == kindFromInput {
		if err := verifyDenseSegments(in.phdr); err != nil {
			return nil, err
		}
		if err := verifyHeadroom(in.phdr); err != nil {
			return nil, err
		}
	}

	outPhdr, err := strategy.layout(in.phdr, in.arch)
	if err != nil {
		return nil, err
	}

	return &Layout{
		arch:    in.arch,
		entry:   in.entry,
		inPhdr:  in.phdr,
		outPhdr: outPhdr,
		data:    in.data,
	}, nil
}

func verify(f *elf.File) error {
	if f.Type != elf.ET_EXEC {
		return errInvalidElf(msgNotExecutable)
	}
	for _, p := range f.Progs {
		if p.Type == elf.PT_DYNAMIC {
			return errInvalidElf(msgHasDynamicArray)
		}
	}
	for _, p := range f.Progs {
		if p.Type == elf.PT_INTERP {
			return errInvalidElf(msgHasInterpreter)
		}
	}
	return nil
}

// sortedLoadHeaders returns the PT_LOAD program headers of f, sorted
// ascending by (Paddr, Vaddr). Non-PT_LOAD headers are dropped.
func sortedLoadHeaders(f *elf.File) []elf.ProgHeader {
	var out []elf.ProgHeader
	for _, p := range f.Progs {
		if p.Type == elf.PT_LOAD {
			out = append(out, p.ProgHeader)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Paddr != out[j].Paddr {
			return out[i].Paddr < out[j].Paddr
		}
		return out[i].Vaddr < out[j].Vaddr
	})
	return out
}

// verifyDenseSegments enforces that no two adjacent (by physical address)
// PT_LOAD segments are separated by a gap larger than PageSize.
func verifyDenseSegments(phdr []elf.ProgHeader) error {
	for i := 1; i < len(phdr); i++ {
		prev, next := phdr[i-1], phdr[i]
		gap := next.Paddr - (prev.Paddr + prev.Memsz)
		if gap > PageSize {
			return errInvalidElf(msgSparseSegments)
		}
	}
	return nil
}

// verifyHeadroom enforces that the lowest physical address among the
// PT_LOAD segments leaves at least one page of room for the synthesized
// PT_PHDR and first PT_LOAD.
func verifyHeadroom(phdr []elf.ProgHeader) error {
	if len(phdr) == 0 {
		return nil
	}
	min := phdr[0].Paddr
	for _, p := range phdr[1:] {
		if p.Paddr < min {
			min = p.Paddr
		}
	}
	if min < PageSize {
		return errInvalidElf(msgNoHeaderHeadroom)
	}
	return nil
}
