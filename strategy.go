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
	"math"
)

// strategyKind distinguishes the two LayoutStrategy variants. It is kept
// private: LayoutStrategy is constructed through FromInput and
// SpecifiedStart. The zero value of LayoutStrategy is equal to FromInput().
type strategyKind int

const (
	kindFromInput strategyKind = iota
	kindSpecifiedStart
)

// LayoutStrategy selects how the physical addresses of the output file's
// PT_LOAD segments are chosen. The two strategies are modeled as a single
// tagged value, not as separate types, because they share essentially all
// of their layout logic: the only differences are the source of each
// segment's physical address during the walk, and a final physical-address
// correction that only FromInput needs.
type LayoutStrategy struct {
	kind      strategyKind
	basePAddr uint64
}

// FromInput selects a strategy that preserves the physical addresses of
// the input file's segments; the synthesized header segment is placed
// immediately below the lowest input physical address.
func FromInput() LayoutStrategy {
	return LayoutStrategy{kind: kindFromInput}
}

// SpecifiedStart selects a strategy whose first output PT_LOAD begins at
// basePAddr; every subsequent PT_LOAD immediately follows the physical end
// of the previous one.
func SpecifiedStart(basePAddr uint64) LayoutStrategy {
	return LayoutStrategy{kind: kindSpecifiedStart, basePAddr: basePAddr}
}

// layout runs the unified layout algorithm described in this package's
// design: it produces len(input)+2 output program headers — a synthetic
// PT_PHDR, a synthetic first PT_LOAD covering the ELF header and the
// program-header table, and one PT_LOAD per entry of input, in order.
func (s LayoutStrategy) layout(input []elf.ProgHeader, arch Arch) ([]elf.ProgHeader, error) {
	count := len(input) + 2
	phdrSize := arch.progHeaderSize()
	headerSize := arch.headerSize()
	phdrBlockSize := uint64(count) * phdrSize
	firstLoadSize := headerSize + phdrBlockSize

	var basePAddr uint64
	if s.kind == kindSpecifiedStart {
		basePAddr = s.basePAddr
	}

	out := make([]elf.ProgHeader, 0, count)
	out = append(out, elf.ProgHeader{
		Type:   elf.PT_PHDR,
		Off:    headerSize,
		Paddr:  basePAddr + headerSize,
		Filesz: phdrBlockSize,
		Memsz:  phdrBlockSize,
		Align:  PageSize,
	})
	out = append(out, elf.ProgHeader{
		Type:   elf.PT_LOAD,
		Off:    0,
		Paddr:  basePAddr,
		Filesz: firstLoadSize,
		Memsz:  firstLoadSize,
		Align:  PageSize,
	})

	offset := firstLoadSize
	paddr := basePAddr + firstLoadSize
	minVaddr := uint64(math.MaxUint64)
	minPaddr := uint64(math.MaxUint64)

	for _, h := range input {
		adj, err := alignAdjustment(offset, h.Vaddr, h.Align)
		if err != nil {
			return nil, err
		}
		offset += adj
		if s.kind == kindSpecifiedStart {
			paddr += adj
		}

		prev := len(out) - 1
		out[prev].Filesz = offset - out[prev].Off
		out[prev].Memsz = offset - out[prev].Off

		segPaddr := h.Paddr
		if s.kind == kindSpecifiedStart {
			segPaddr = paddr
		}

		out = append(out, elf.ProgHeader{
			Type:   elf.PT_LOAD,
			Off:    offset,
			Paddr:  segPaddr,
			Vaddr:  h.Vaddr,
			Filesz: h.Memsz,
			Memsz:  h.Memsz,
			Flags:  h.Flags,
			Align:  h.Align,
		})

		offset += h.Memsz
		if s.kind == kindSpecifiedStart {
			paddr += h.Memsz
		}
		if h.Vaddr < minVaddr {
			minVaddr = h.Vaddr
		}
		if h.Paddr < minPaddr {
			minPaddr = h.Paddr
		}
	}

	if len(input) == 0 {
		// No PT_LOAD segments to anchor the synthetic headers against;
		// place them at a virtual address equal to their file offset.
		out[0].Vaddr = out[0].Off
		out[1].Vaddr = out[1].Off
		return out, nil
	}

	phdrVaddr, err := alignDown(minVaddr-phdrBlockSize, out[0].Off, out[0].Align)
	if err != nil {
		return nil, err
	}
	out[0].Vaddr = phdrVaddr

	firstLoadVaddr, err := alignDown(minVaddr-firstLoadSize, out[1].Off, out[1].Align)
	if err != nil {
		return nil, err
	}
	out[1].Vaddr = firstLoadVaddr

	if s.kind == kindFromInput {
		adjust := minPaddr - firstLoadSize
		out[0].Paddr += adjust
		out[1].Paddr += adjust
	}

	return out, nil
}

// alignAdjustment returns the amount by which offset must advance so that
// (offset+adjustment) mod align == vaddr mod align, per the ELF loader's
// requirement that a PT_LOAD's file offset and virtual address agree modulo
// its alignment. It panics if the computed adjustment does not in fact
// restore that invariant: that indicates a bug in this function, not a
// problem with the caller's input (compare the analogous
// assert!(offset % p_align == p_vaddr % p_align) in the upstream Rust
// implementation's create_subsequent_load_header).
func alignAdjustment(offset, vaddr, align uint64) (uint64, error) {
	if align == 0 {
		return 0, errInvalidElf("PT_LOAD segment has zero alignment")
	}
	hi, lo := offset, vaddr
	if lo > hi {
		hi, lo = lo, hi
	}
	adj := (hi - lo) % align
	if (offset+adj)%align != vaddr%align {
		panic("elfpreload: alignAdjustment failed to restore the offset/vaddr alignment invariant")
	}
	return adj, nil
}

// alignDown computes a value congruent to reference modulo align that is at
// most x, using the closed form x − ((max(x,reference) −
// min(x,reference)) mod align). As noted in this package's design, that
// closed form can produce a result greater than x when x < reference and
// their difference is not a multiple of align; that situation is treated
// as a constraint violation in the input ELF file (its virtual addresses
// leave no room for the synthetic header segments) rather than silently
// emitting a malformed output file.
func alignDown(x, reference, align uint64) (uint64, error) {
	hi, lo := x, reference
	if lo > hi {
		hi, lo = lo, hi
	}
	result := x - ((hi - lo) % align)
	if result > x {
		return 0, errInvalidElf(msgNoVaddrHeadroom)
	}
	if result%align != reference%align {
		panic("elfpreload: alignDown failed to produce a value congruent to reference")
	}
	return result, nil
}
