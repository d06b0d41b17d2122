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

// Package elfpreload transforms a statically linked, self-contained ELF
// executable into an ELF file whose on-disk byte image can be loaded by a
// single contiguous copy to a load address: no relocations, no dynamic
// linking, no section-header interpretation required at load time.
//
// The transform has three stages. Input parses and validates an ELF
// executable, keeping only its PT_LOAD program headers. Layout, given a
// LayoutStrategy, computes the output program-header table: a synthetic
// PT_PHDR, a synthetic first PT_LOAD covering the ELF header and the
// program-header table, and one PT_LOAD per input PT_LOAD, arranged so
// that file offsets are contiguous and every PT_LOAD's file size equals its
// memory size (no implicit BSS). Under SpecifiedStart the physical
// addresses are contiguous as well; under FromInput each PT_LOAD keeps its
// input physical address. Output is
// produced through an OutputWriter, which can be split into independent,
// disjoint writers so the final byte copy can run in parallel while the
// layout computation itself stays serial.
package elfpreload

// PageSize is the page size assumed by the ELF loader this package targets.
const PageSize = 4096
