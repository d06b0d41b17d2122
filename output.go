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
	"context"
	"sync"
)

// OutputWriter writes a contiguous range of output segments into a
// caller-supplied byte slice. It is created by Layout.Output and covers
// every output segment; Split divides it into two independent
// OutputWriters over disjoint, non-overlapping sub-slices of the original
// buffer, so their Write calls never race.
//
// The split/write shape is deliberately suited to a work-stealing,
// split-until-leaf parallel scheduler: Split returns at most two disjoint
// sub-problems, and a leaf (a range of one segment) can always be written
// independently of every other leaf.
type OutputWriter struct {
	layout *Layout
	lo, hi int // half-open range of segment indices
	buf    []byte
}

// Split divides w into two OutputWriters covering disjoint halves of w's
// segment range and byte slice, or returns (w, nil) if w already covers at
// most one segment and cannot be split further.
func (w *OutputWriter) Split() (*OutputWriter, *OutputWriter) {
	if w.hi-w.lo <= 1 {
		return w, nil
	}

	mid := w.lo + (w.hi-w.lo)/2
	midBytes := 0
	for i := w.lo; i < mid; i++ {
		midBytes += w.layout.SegmentSize(i)
	}

	left := &OutputWriter{layout: w.layout, lo: w.lo, hi: mid, buf: w.buf[:midBytes]}
	right := &OutputWriter{layout: w.layout, lo: mid, hi: w.hi, buf: w.buf[midBytes:]}
	return left, right
}

// Write materializes every segment in w's range, in ascending index order,
// into w's byte slice.
func (w *OutputWriter) Write() error {
	offset := 0
	for i := w.lo; i < w.hi; i++ {
		size := w.layout.SegmentSize(i)
		if err := w.layout.WriteSegment(i, w.buf[offset:offset+size]); err != nil {
			return err
		}
		offset += size
	}
	return nil
}

// WriteParallel is a concrete instantiation of the split-until-leaf
// scheduler that Split's signature is shaped for: it recursively splits w
// until either a leaf covers a single segment or maxLeaves leaves have
// been produced, then writes every leaf concurrently. It returns the first
// error encountered, if any, once every leaf has finished or ctx is
// cancelled.
//
// maxLeaves <= 1 writes w serially without spawning any goroutines.
func (w *OutputWriter) WriteParallel(ctx context.Context, maxLeaves int) error {
	if maxLeaves <= 1 {
		return w.Write()
	}

	leaves := splitInto(w, maxLeaves)

	var wg sync.WaitGroup
	errs := make([]error, len(leaves))
	for i, leaf := range leaves {
		if err := ctx.Err(); err != nil {
			return err
		}
		wg.Add(1)
		go func(i int, leaf *OutputWriter) {
			defer wg.Done()
			errs[i] = leaf.Write()
		}(i, leaf)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// splitInto recursively splits w into at most maxLeaves OutputWriters,
// stopping early for any branch that can no longer be split.
func splitInto(w *OutputWriter, maxLeaves int) []*OutputWriter {
	if maxLeaves <= 1 {
		return []*OutputWriter{w}
	}

	left, right := w.Split()
	if right == nil {
		return []*OutputWriter{left}
	}

	half := maxLeaves / 2
	if half < 1 {
		half = 1
	}
	leaves := splitInto(left, half)
	leaves = append(leaves, splitInto(right, maxLeaves-half)...)
	return leaves
}
