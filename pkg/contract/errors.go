// Copyright 2025 walteh LLC
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

package contract

import "gitlab.com/tozd/go/errors"

// Sentinel errors for the taxonomy described in the processing design:
// file-level failures are local to that file and never abort a batch.
var (
	// ErrNotText names the case of a file detected as binary by the
	// NUL-byte heuristic. The processor does not return it: it reports a
	// binary file, like a read failure, with LoadFailureMessage.
	ErrNotText = errors.New("file is not text")

	// ErrPoolShutdown is returned by a WorkerPool when a task is
	// submitted after Shutdown has been called.
	ErrPoolShutdown = errors.New("worker pool is shut down")
)

// LoadFailureMessage is the ProcessingResult.ErrMsg used for both
// InputNotText and IOReadError, matching the reference implementation's
// single surfaced message for any preprocessing failure.
const LoadFailureMessage = "Failed to load file content"

// PageErrorPrefix prefixes a page-processing exception message folded
// into a ProcessingResult.ErrMsg.
const PageErrorPrefix = "Page processing exception: "
