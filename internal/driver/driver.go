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

package driver

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/google/elfpreload"
)

// Run acquires each of flags.Inputs, transforms it per flags, and writes
// the result to flags.Output (or, with multiple inputs, alongside each
// input with a ".preload" suffix).
func Run(flags *Flags) error {
	if flags.Interactive {
		return runInteractive(flags)
	}
	if len(flags.Inputs) == 0 {
		return fmt.Errorf("no -input given")
	}

	for _, path := range flags.Inputs {
		out := flags.Output
		if out == "" || len(flags.Inputs) > 1 {
			out = path + ".preload"
		}
		if err := transformFile(flags, path, out); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// transformFile reads path, runs the elfpreload transform over it, and
// writes the result to out.
func transformFile(flags *Flags, path, out string) error {
	logf(flags, "reading %s", path)
	data, err := mmapFile(path)
	if err != nil {
		return err
	}
	defer unix.Munmap(data)

	if pg := unix.Getpagesize(); pg > 0 && uint64(pg) != elfpreload.PageSize {
		logf(flags, "warning: host page size %d differs from elfpreload.PageSize %d", pg, elfpreload.PageSize)
	}

	in, err := elfpreload.NewInput(data)
	if err != nil {
		return err
	}
	logf(flags, "parsed %s: %s", path, in.Arch())

	strategy := elfpreload.SpecifiedStart(flags.BasePAddr)
	if flags.FromInput {
		strategy = elfpreload.FromInput()
	}

	layout, err := in.Layout(strategy)
	if err != nil {
		return err
	}

	buf := make([]byte, layout.RequiredSize())
	w, err := layout.Output(buf)
	if err != nil {
		return err
	}
	if err := w.WriteParallel(context.Background(), flags.MaxParallel); err != nil {
		return err
	}

	logf(flags, "writing %s (%d bytes)", out, len(buf))
	return os.WriteFile(out, buf, 0o755)
}

// mmapFile maps path read-only using golang.org/x/sys/unix; the mapped
// bytes are handed directly to elfpreload.NewInput without an intervening
// copy.
func mmapFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	return unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
}

func logf(flags *Flags, format string, args ...interface{}) {
	if !flags.Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
