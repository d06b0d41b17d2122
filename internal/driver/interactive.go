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
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/sys/unix"

	"github.com/google/elfpreload"
)

// runInteractive opens a readline REPL, in the manner of pprof's own
// interactive mode: each line names a path to an ELF executable, which is
// loaded, summarized by its Arch (its PT_LOAD segments are not listed), and
// transformed per flags into path+".preload". "help" lists the available commands and
// "quit"/"exit"/EOF end the session.
func runInteractive(flags *Flags) error {
	rl, err := readline.New("elfpreload> ")
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stderr(), "elfpreload interactive mode. Enter a path to an ELF executable, or 'help'.")

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "help":
			fmt.Fprintln(rl.Stderr(), "commands: <path>  load and transform an ELF file\n          help    show this message\n          quit    exit")
			continue
		case "quit", "exit":
			return nil
		}

		if err := inspectAndTransform(flags, line); err != nil {
			fmt.Fprintln(rl.Stderr(), "error:", err)
		}
	}
}

// inspectAndTransform loads path, prints its architecture, then runs the
// configured transform, writes the result to path+".preload", and prints
// the output size and number of output segments. The individual PT_LOAD
// segments are not printed.
func inspectAndTransform(flags *Flags, path string) error {
	data, err := mmapFile(path)
	if err != nil {
		return err
	}
	defer unix.Munmap(data)

	in, err := elfpreload.NewInput(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", path, in.Arch())

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

	out := path + ".preload"
	if err := os.WriteFile(out, buf, 0o755); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes, %d output segments)\n", out, len(buf), layout.OutSegments())
	return nil
}
