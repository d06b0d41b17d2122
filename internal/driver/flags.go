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
	"flag"
	"fmt"
	"strings"
)

// inputList is a flag.Value backed by a slice of strings: each "-input"
// given on the commandline appends its value to the slice, the way a
// repeatable flag normally would if the flag package let one flag.Var
// accumulate instead of overwrite.
type inputList []string

func (il *inputList) String() string {
	return fmt.Sprint(*il)
}

func (il *inputList) Set(v string) error {
	*il = append(*il, v)
	return nil
}

// Flags holds the parsed commandline configuration for a single run of the
// elfpreload tool.
type Flags struct {
	Inputs        inputList
	Output        string
	BasePAddr     uint64
	FromInput     bool
	Interactive   bool
	Verbose       bool
	MaxParallel   int
	UsageMessages []string
}

// ParseFlags registers and parses the elfpreload commandline flags. Flag
// defaults fall back to process environment overrides the way pprof's
// fetch.go reads PPROF_BINARY_PATH; see env.go.
func ParseFlags(args []string, usage func()) (*Flags, []string, error) {
	fs := flag.NewFlagSet("elfpreload", flag.ContinueOnError)

	f := &Flags{}
	fs.Var(&f.Inputs, "input", "path to an input ELF executable (repeatable)")
	fs.StringVar(&f.Output, "output", "", "path to write the transformed output to")
	fs.Uint64Var(&f.BasePAddr, "base-paddr", defaultBasePAddr(), "physical load address for -from-input=false")
	fs.BoolVar(&f.FromInput, "from-input", true, "derive output physical addresses from the input file's own layout")
	fs.BoolVar(&f.Interactive, "interactive", false, "open an interactive REPL instead of transforming a file")
	fs.BoolVar(&f.Verbose, "v", defaultVerbose(), "log progress to stderr")
	fs.IntVar(&f.MaxParallel, "max-parallel", 1, "maximum number of goroutines used to write output segments")

	fs.Usage = usage
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// AddExtraUsage records an additional usage line, returned by ExtraUsage.
func (f *Flags) AddExtraUsage(msg string) {
	f.UsageMessages = append(f.UsageMessages, msg)
}

// ExtraUsage renders the usage lines accumulated by AddExtraUsage, one per
// line.
func (f *Flags) ExtraUsage() string {
	return strings.Join(f.UsageMessages, "\n")
}
