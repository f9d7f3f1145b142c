// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cinedex/pkg/types"
)

// rawRecord is one dataset entry before genre parsing. Fields are kept
// loose because the public movie datasets disagree on id and genre types.
type rawRecord struct {
	MovieID  string
	Title    string
	Genres   any
	Overview string
}

// Load reads the dataset at path. The format follows the file extension:
// .json, .yaml/.yml, or .db/.sqlite. A missing or malformed file is an
// error; a record whose genre field cannot be parsed is kept with an
// empty genre set and logged.
func Load(path string, log zerolog.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	var (
		raws []rawRecord
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		raws, err = readJSON(path)
	case ".yaml", ".yml":
		raws, err = readYAML(path)
	case ".db", ".sqlite", ".sqlite3":
		raws, err = readSQLite(path)
	default:
		return nil, fmt.Errorf("dataset %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", path, err)
	}

	records, err := buildRecords(raws, log)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("records", len(records)).Msg("dataset loaded")
	return New(records), nil
}

func buildRecords(raws []rawRecord, log zerolog.Logger) ([]types.MovieRecord, error) {
	records := make([]types.MovieRecord, 0, len(raws))
	for i, raw := range raws {
		id, err := strconv.ParseInt(strings.TrimSpace(raw.MovieID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("record %d: invalid movie_id %q", i, raw.MovieID)
		}
		title := strings.TrimSpace(raw.Title)
		if title == "" {
			return nil, fmt.Errorf("record %d (movie_id %d): missing title", i, id)
		}

		genres, err := genresFromValue(raw.Genres)
		if err != nil {
			log.Warn().Err(err).Int64("movie_id", id).Str("title", title).
				Msg("unparseable genre field, using empty genre set")
			genres = nil
		}

		records = append(records, types.MovieRecord{
			MovieID:  id,
			Title:    title,
			Genres:   genres,
			Overview: strings.TrimSpace(raw.Overview),
		})
	}
	return records, nil
}

// jsonRecord accepts movie_id as a number or a numeric string and the
// genre field as a serialized string or an inline list.
type jsonRecord struct {
	MovieID  json.Number     `json:"movie_id"`
	ID       json.Number     `json:"id"`
	Title    string          `json:"title"`
	Genres   json.RawMessage `json:"genres"`
	Overview string          `json:"overview"`
}

func readJSON(path string) ([]rawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var items []jsonRecord
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	raws := make([]rawRecord, len(items))
	for i, it := range items {
		id := it.MovieID
		if id == "" {
			id = it.ID
		}
		var genres any
		if len(it.Genres) > 0 && string(it.Genres) != "null" {
			if err := json.Unmarshal(it.Genres, &genres); err != nil {
				genres = string(it.Genres)
			}
		}
		raws[i] = rawRecord{MovieID: id.String(), Title: it.Title, Genres: genres, Overview: it.Overview}
	}
	return raws, nil
}

type yamlRecord struct {
	MovieID  string `yaml:"movie_id"`
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Genres   any    `yaml:"genres"`
	Overview string `yaml:"overview"`
}

func readYAML(path string) ([]rawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []yamlRecord
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	raws := make([]rawRecord, len(items))
	for i, it := range items {
		id := it.MovieID
		if id == "" {
			id = it.ID
		}
		raws[i] = rawRecord{MovieID: id, Title: it.Title, Genres: it.Genres, Overview: it.Overview}
	}
	return raws, nil
}

// readSQLite reads table movies(movie_id, title, genres[, overview]) from a
// database opened read-only.
func readSQLite(path string) ([]rawRecord, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	hasOverview, err := hasColumn(db, "movies", "overview")
	if err != nil {
		return nil, err
	}
	query := `SELECT CAST(movie_id AS TEXT), title, COALESCE(genres, '') FROM movies ORDER BY rowid`
	if hasOverview {
		query = `SELECT CAST(movie_id AS TEXT), title, COALESCE(genres, ''), COALESCE(overview, '') FROM movies ORDER BY rowid`
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying movies: %w", err)
	}
	defer rows.Close()

	var raws []rawRecord
	for rows.Next() {
		var r rawRecord
		var genres string
		dest := []any{&r.MovieID, &r.Title, &genres}
		if hasOverview {
			dest = append(dest, &r.Overview)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning movie row: %w", err)
		}
		r.Genres = genres
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating movie rows: %w", err)
	}
	return raws, nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("inspecting table %s: %w", table, err)
	}
	defer rows.Close()

	found := false
	cols := 0
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		cols++
		if strings.EqualFold(name, column) {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	if cols == 0 {
		return false, fmt.Errorf("table %s not found", table)
	}
	return found, nil
}
