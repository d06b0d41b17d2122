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
	"strconv"

	"github.com/xyproto/env/v2"
)

// defaultBasePAddr supplies -base-paddr's default from ELFPRELOAD_BASE_PADDR,
// the way pprof's fetch.go reads PPROF_BINARY_PATH as a default search path.
func defaultBasePAddr() uint64 {
	v := env.Str("ELFPRELOAD_BASE_PADDR", "")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0
	}
	return n
}

// defaultVerbose supplies -v's default from ELFPRELOAD_VERBOSE.
func defaultVerbose() bool {
	return env.Bool("ELFPRELOAD_VERBOSE", false)
}
