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
	"context"
	"debug/elf"
	"testing"
)

func testLayoutForOutput(t *testing.T) *Layout {
	t.Helper()
	phdrs := []elf.ProgHeader{
		loadHeader(0x1000, 0x401000, 0x401000, 0x200, PageSize),
		loadHeader(0x1200, 0x402000, 0x402000, 0x100, PageSize),
		loadHeader(0x1300, 0x403000, 0x403000, 0x80, PageSize),
	}
	return buildLayout(t, FromInput(), phdrs)
}

// TestSplitIsNoopAtLeaf checks that Split refuses to split a writer that
// already covers a single segment.
func TestSplitIsNoopAtLeaf(t *testing.T) {
	l := testLayoutForOutput(t)
	buf := make([]byte, l.RequiredSize())
	w, err := l.Output(buf)
	if err != nil {
		t.Fatalf("Output: unexpected error: %v", err)
	}

	w.hi = w.lo + 1
	left, right := w.Split()
	if right != nil {
		t.Fatalf("Split of a single-segment writer: want nil right, got %v", right)
	}
	if left != w {
		t.Fatalf("Split of a single-segment writer: want the same writer back")
	}
}

// TestSplitPartitionsBufferDisjointly checks that the two writers returned
// by Split cover disjoint, contiguous byte ranges of the original buffer,
// and that writing them independently (right half first) produces the same
// bytes as a single serial Write.
func TestSplitPartitionsBufferDisjointly(t *testing.T) {
	l := testLayoutForOutput(t)

	serial := make([]byte, l.RequiredSize())
	sw, err := l.Output(serial)
	if err != nil {
		t.Fatalf("Output: unexpected error: %v", err)
	}
	if err := sw.Write(); err != nil {
		t.Fatalf("Write: unexpected error: %v", err)
	}

	split := make([]byte, l.RequiredSize())
	w, err := l.Output(split)
	if err != nil {
		t.Fatalf("Output: unexpected error: %v", err)
	}
	left, right := w.Split()
	if right == nil {
		t.Fatal("Split: want a non-nil right half for a multi-segment writer")
	}
	if len(left.buf)+len(right.buf) != len(split) {
		t.Fatalf("len(left.buf)+len(right.buf) = %d, want %d", len(left.buf)+len(right.buf), len(split))
	}
	if &left.buf[0] != &split[0] {
		t.Fatal("left half does not start at the beginning of the output buffer")
	}

	if err := right.Write(); err != nil {
		t.Fatalf("right.Write: unexpected error: %v", err)
	}
	if err := left.Write(); err != nil {
		t.Fatalf("left.Write: unexpected error: %v", err)
	}

	if !bytes.Equal(serial, split) {
		t.Error("writing the two halves of a split writer did not reproduce a serial Write")
	}
}

// TestWriteParallelMatchesSerialWrite checks that WriteParallel, regardless
// of how many leaves it fans out into, produces byte-identical output to a
// serial Write.
func TestWriteParallelMatchesSerialWrite(t *testing.T) {
	l := testLayoutForOutput(t)

	serial := make([]byte, l.RequiredSize())
	sw, err := l.Output(serial)
	if err != nil {
		t.Fatalf("Output: unexpected error: %v", err)
	}
	if err := sw.Write(); err != nil {
		t.Fatalf("Write: unexpected error: %v", err)
	}

	for _, maxLeaves := range []int{1, 2, 4, 64} {
		parallel := make([]byte, l.RequiredSize())
		pw, err := l.Output(parallel)
		if err != nil {
			t.Fatalf("Output: unexpected error: %v", err)
		}
		if err := pw.WriteParallel(context.Background(), maxLeaves); err != nil {
			t.Fatalf("WriteParallel(maxLeaves=%d): unexpected error: %v", maxLeaves, err)
		}
		if !bytes.Equal(serial, parallel) {
			t.Errorf("WriteParallel(maxLeaves=%d) != serial Write", maxLeaves)
		}
	}
}

// TestWriteParallelRespectsCancellation checks that a cancelled context
// stops WriteParallel from spawning further leaf writes.
func TestWriteParallelRespectsCancellation(t *testing.T) {
	l := testLayoutForOutput(t)
	buf := make([]byte, l.RequiredSize())
	w, err := l.Output(buf)
	if err != nil {
		t.Fatalf("Output: unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.WriteParallel(ctx, 4); err == nil {
		t.Fatal("WriteParallel with a cancelled context: want error, got nil")
	}
}
