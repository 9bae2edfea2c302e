//----------------------------------------------------------------------
// This file is part of openmagnetics.
// Copyright (C) 2024-present Bernd Fix >Y<,  DO3YQ
//
// openmagnetics is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.
//
// openmagnetics is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL3.0-or-later
//----------------------------------------------------------------------

package magnetics

import (
	"os"
	"sync"
	"time"

	charm "github.com/charmbracelet/log"
)

// LogEntry is one non-fatal log line recorded while an advisor works
// through candidates, the read_log() of the propagation policy: advisors
// swallow Geometry and SimulatorFailure per-candidate and drop a trail
// here instead of failing the whole search.
type LogEntry struct {
	Time time.Time
	Op   string
	Kind Kind
	Msg  string
}

var (
	logger  = charm.NewWithOptions(os.Stderr, charm.Options{ReportTimestamp: true})
	ringMu  sync.Mutex
	ring    []LogEntry
	ringCap = 4096
)

// Default returns the process-wide structured logger.
func Default() *charm.Logger {
	return logger
}

// logDrop appends a swallowed per-candidate error to the ring buffer and
// mirrors it to the structured logger at warn level.
func logDrop(op string, err error) {
	kind, _ := KindOf(err)
	entry := LogEntry{Time: time.Now(), Op: op, Kind: kind, Msg: err.Error()}

	ringMu.Lock()
	ring = append(ring, entry)
	if len(ring) > ringCap {
		ring = ring[len(ring)-ringCap:]
	}
	ringMu.Unlock()

	logger.Warn("candidate dropped", "op", op, "kind", kind.String(), "err", err)
}

// ReadLog returns a snapshot of the non-fatal log trail accumulated by
// advisors so far. The returned slice is a copy; it is safe to retain and
// is unaffected by later logging.
func ReadLog() []LogEntry {
	ringMu.Lock()
	defer ringMu.Unlock()
	out := make([]LogEntry, len(ring))
	copy(out, ring)
	return out
}

// ResetLog clears the ring buffer. Intended for tests.
func ResetLog() {
	ringMu.Lock()
	defer ringMu.Unlock()
	ring = nil
}
