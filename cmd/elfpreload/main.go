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

// Command elfpreload transforms statically linked ELF executables into
// single-contiguous-copy loadable ELF files.
package main

import (
	"fmt"
	"os"

	"github.com/google/elfpreload/internal/driver"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: elfpreload -input FILE [-input FILE ...] [-output FILE] [flags]")
	fmt.Fprintln(os.Stderr, "       elfpreload -interactive")
	fmt.Fprintln(os.Stderr, "flags:")
	fmt.Fprintln(os.Stderr, "  -input string        path to an input ELF executable (repeatable)")
	fmt.Fprintln(os.Stderr, "  -output string        path to write the transformed output to")
	fmt.Fprintln(os.Stderr, "  -base-paddr uint      physical load address for -from-input=false")
	fmt.Fprintln(os.Stderr, "  -from-input           derive output physical addresses from the input's own layout (default true)")
	fmt.Fprintln(os.Stderr, "  -max-parallel int     maximum number of goroutines used to write output segments")
	fmt.Fprintln(os.Stderr, "  -interactive          open an interactive REPL")
	fmt.Fprintln(os.Stderr, "  -v                    log progress to stderr")
}

func main() {
	flags, _, err := driver.ParseFlags(os.Args[1:], usage)
	if err != nil {
		os.Exit(2)
	}

	if err := driver.Run(flags); err != nil {
		fmt.Fprintln(os.Stderr, "elfpreload:", err)
		os.Exit(1)
	}
}
