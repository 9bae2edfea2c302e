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
	"bufio"
	"database/sql"
	"encoding/json"
	"io"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// CatalogueKind names one of the seven external read-only catalogues (§6):
// cores, core materials, core shapes, wires, bobbins, insulation
// materials, wire materials consumed as newline-delimited JSON.
type CatalogueKind int

const (
	CatalogueCores CatalogueKind = iota
	CatalogueCoreMaterials
	CatalogueCoreShapes
	CatalogueWires
	CatalogueBobbins
	CatalogueInsulationMaterials
	CatalogueWireMaterials
)

func (k CatalogueKind) tableName() string {
	switch k {
	case CatalogueCores:
		return "catalogue_cores"
	case CatalogueCoreMaterials:
		return "catalogue_core_materials"
	case CatalogueCoreShapes:
		return "catalogue_core_shapes"
	case CatalogueWires:
		return "catalogue_wires"
	case CatalogueBobbins:
		return "catalogue_bobbins"
	case CatalogueInsulationMaterials:
		return "catalogue_insulation_materials"
	default:
		return "catalogue_wire_materials"
	}
}

// loadNDJSON reads newline-delimited JSON records from r into a map
// keyed by each record's "name" field, skipping blank lines (§6: "the
// catalogue loader returns maps keyed by name").
func loadNDJSON(r io.Reader) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var probe struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			return nil, NewError(InvalidInput, "loadNDJSON", err)
		}
		if probe.Name == "" {
			continue
		}
		raw := make(json.RawMessage, len(line))
		copy(raw, line)
		out[probe.Name] = raw
	}
	if err := scanner.Err(); err != nil {
		return nil, NewError(Unknown, "loadNDJSON", err)
	}
	return out, nil
}

// LoadCatalogueFile reads an NDJSON catalogue file from disk.
func LoadCatalogueFile(path string) (map[string]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewError(MissingData, "LoadCatalogueFile", err)
	}
	defer f.Close()
	return loadNDJSON(f)
}

//----------------------------------------------------------------------
// sqlite-backed cache (schema-on-first-use, following database.go)
//----------------------------------------------------------------------

// CatalogueStore caches loaded catalogues and ranked candidate results in
// a local sqlite database so repeated runs avoid re-parsing NDJSON
// files, mirroring the schema-on-first-use pattern of a sqlite-backed
// results database.
type CatalogueStore struct {
	db *sql.DB
}

// OpenCatalogueStore opens (or creates) the sqlite database at path and
// ensures its schema exists.
func OpenCatalogueStore(path string) (*CatalogueStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, NewError(Unknown, "OpenCatalogueStore", err)
	}
	s := &CatalogueStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CatalogueStore) ensureSchema() error {
	const ddl = `
create table if not exists catalogue_entries (
    kind    integer not null,
    name    varchar(255) not null,
    payload blob not null,
    primary key (kind, name)
);
create table if not exists ranked_candidates (
    id          integer primary key,
    query_tag   varchar(255) not null,
    reference   varchar(255) not null,
    score       float not null,
    created_unix integer not null
);
create index if not exists idx_ranked_tag on ranked_candidates(query_tag);
`
	_, err := s.db.Exec(ddl)
	if err != nil {
		return NewError(Unknown, "CatalogueStore.ensureSchema", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *CatalogueStore) Close() error {
	return s.db.Close()
}

// CacheCatalogue persists every entry of an already-loaded catalogue, so
// a subsequent Load for the same kind can be served from sqlite instead
// of re-parsing the source NDJSON file.
func (s *CatalogueStore) CacheCatalogue(kind CatalogueKind, entries map[string]json.RawMessage) error {
	tx, err := s.db.Begin()
	if err != nil {
		return NewError(Unknown, "CatalogueStore.CacheCatalogue", err)
	}
	stmt, err := tx.Prepare("replace into catalogue_entries(kind, name, payload) values (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return NewError(Unknown, "CatalogueStore.CacheCatalogue", err)
	}
	defer stmt.Close()
	for name, payload := range entries {
		if _, err := stmt.Exec(int(kind), name, []byte(payload)); err != nil {
			tx.Rollback()
			return NewError(Unknown, "CatalogueStore.CacheCatalogue", err)
		}
	}
	return tx.Commit()
}

// LoadCached returns every cached entry for kind, or an empty map if
// nothing has been cached yet.
func (s *CatalogueStore) LoadCached(kind CatalogueKind) (map[string]json.RawMessage, error) {
	rows, err := s.db.Query("select name, payload from catalogue_entries where kind = ?", int(kind))
	if err != nil {
		return nil, NewError(Unknown, "CatalogueStore.LoadCached", err)
	}
	defer rows.Close()
	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, NewError(Unknown, "CatalogueStore.LoadCached", err)
		}
		out[name] = json.RawMessage(payload)
	}
	return out, nil
}

// LoadOrCache returns the cached entries for kind if present, otherwise
// loads path as NDJSON, caches the result, and returns it: the
// load-once-then-immutable lifecycle described for catalogues (§5).
func (s *CatalogueStore) LoadOrCache(kind CatalogueKind, path string) (map[string]json.RawMessage, error) {
	cached, err := s.LoadCached(kind)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		return cached, nil
	}
	loaded, err := LoadCatalogueFile(path)
	if err != nil {
		return nil, err
	}
	if err := s.CacheCatalogue(kind, loaded); err != nil {
		return nil, err
	}
	return loaded, nil
}

// SaveRankedCandidates persists the reference strings and scores of one
// ranked result set under queryTag, for later inspection (e.g. by a CLI
// report) without recomputing the ranking.
func (s *CatalogueStore) SaveRankedCandidates(queryTag string, refs []string, scores []float64, unixTime int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return NewError(Unknown, "CatalogueStore.SaveRankedCandidates", err)
	}
	stmt, err := tx.Prepare("insert into ranked_candidates(query_tag, reference, score, created_unix) values (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return NewError(Unknown, "CatalogueStore.SaveRankedCandidates", err)
	}
	defer stmt.Close()
	for i, ref := range refs {
		score := 0.0
		if i < len(scores) {
			score = scores[i]
		}
		if _, err := stmt.Exec(queryTag, ref, score, unixTime); err != nil {
			tx.Rollback()
			return NewError(Unknown, "CatalogueStore.SaveRankedCandidates", err)
		}
	}
	return tx.Commit()
}

// RankedCandidate is one row previously persisted by SaveRankedCandidates.
type RankedCandidate struct {
	Reference string
	Score     float64
	CreatedUnix int64
}

// LoadRankedCandidates returns every candidate previously saved under
// queryTag, ordered by descending score.
func (s *CatalogueStore) LoadRankedCandidates(queryTag string) ([]RankedCandidate, error) {
	rows, err := s.db.Query(
		"select reference, score, created_unix from ranked_candidates where query_tag = ? order by score desc",
		queryTag)
	if err != nil {
		return nil, NewError(Unknown, "CatalogueStore.LoadRankedCandidates", err)
	}
	defer rows.Close()
	var out []RankedCandidate
	for rows.Next() {
		var c RankedCandidate
		if err := rows.Scan(&c.Reference, &c.Score, &c.CreatedUnix); err != nil {
			return nil, NewError(Unknown, "CatalogueStore.LoadRankedCandidates", err)
		}
		out = append(out, c)
	}
	return out, nil
}
