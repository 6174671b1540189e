// Package artifact persists and loads the three files produced by training:
// the fitted vector space model, the game vector matrix and the game table.
// The game table rows are in the same order as the matrix rows.
package artifact

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/vectorspace"
)

const formatVersion = 1

var gamesHeader = []string{"app_id", "app_name", "review_count"}

type Paths struct {
	Model   string
	Vectors string
	Games   string
}

type Bundle struct {
	Model   *vectorspace.Model
	Vectors *vectorspace.Matrix
	Games   []domain.Game
}

// Error ties a load or save failure to the file involved. Kind is one of
// domain.ErrArtifactMissing or domain.ErrArtifactCorrupt for load failures.
type Error struct {
	Path  string
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	if e.Kind == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Cause)
}

func (e *Error) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Cause}
	}
	return []error{e.Kind, e.Cause}
}

type modelFile struct {
	Version    int                `json:"version"`
	Config     vectorspace.Config `json:"config"`
	Vocabulary []string           `json:"vocabulary"`
	IDF        []float64          `json:"idf"`
}

type vectorsFile struct {
	Version int                        `json:"version"`
	Rows    int                        `json:"rows"`
	Cols    int                        `json:"cols"`
	Data    []vectorspace.SparseVector `json:"data"`
}

func Save(p Paths, b *Bundle) error {
	if b == nil || b.Model == nil || b.Vectors == nil {
		return errors.New("artifact: nothing to save")
	}
	mf := modelFile{
		Version:    formatVersion,
		Config:     b.Model.Config(),
		Vocabulary: b.Model.Terms(),
		IDF:        b.Model.IDF(),
	}
	if err := writeJSON(p.Model, mf); err != nil {
		return err
	}
	vf := vectorsFile{
		Version: formatVersion,
		Rows:    b.Vectors.Len(),
		Cols:    b.Vectors.Cols,
		Data:    b.Vectors.Rows,
	}
	if err := writeJSON(p.Vectors, vf); err != nil {
		return err
	}
	return writeFile(p.Games, func(w io.Writer) error {
		return writeGames(w, b.Games)
	})
}

// Load reads all three artifacts. Any missing or undecodable file fails the whole load.
func Load(p Paths) (*Bundle, error) {
	var mf modelFile
	if err := readFile(p.Model, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&mf)
	}); err != nil {
		return nil, err
	}
	if mf.Version != formatVersion {
		return nil, corrupt(p.Model, fmt.Errorf("unsupported format version %d", mf.Version))
	}
	vsm, err := vectorspace.NewModel(mf.Config, mf.Vocabulary, mf.IDF)
	if err != nil {
		return nil, corrupt(p.Model, err)
	}

	var vf vectorsFile
	if err := readFile(p.Vectors, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&vf)
	}); err != nil {
		return nil, err
	}
	if vf.Version != formatVersion {
		return nil, corrupt(p.Vectors, fmt.Errorf("unsupported format version %d", vf.Version))
	}
	if vf.Rows != len(vf.Data) {
		return nil, corrupt(p.Vectors, fmt.Errorf("header declares %d rows, found %d", vf.Rows, len(vf.Data)))
	}
	vectors := &vectorspace.Matrix{Cols: vf.Cols, Rows: vf.Data}
	if err := vectors.Validate(); err != nil {
		return nil, corrupt(p.Vectors, err)
	}

	var games []domain.Game
	if err := readFile(p.Games, func(r io.Reader) error {
		games, err = readGames(r)
		return err
	}); err != nil {
		return nil, err
	}

	return &Bundle{Model: vsm, Vectors: vectors, Games: games}, nil
}

func writeGames(w io.Writer, games []domain.Game) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(gamesHeader); err != nil {
		return err
	}
	for _, g := range games {
		rec := []string{strconv.FormatInt(g.ID, 10), g.Name, strconv.Itoa(g.ReviewCount)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readGames(r io.Reader) ([]domain.Game, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 || header[0] != gamesHeader[0] || header[1] != gamesHeader[1] {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var games []domain.Game
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad app_id %q", line, rec[0])
		}
		g := domain.Game{ID: id, Name: rec[1]}
		if len(rec) > 2 && rec[2] != "" {
			if g.ReviewCount, err = strconv.Atoi(rec[2]); err != nil {
				return nil, fmt.Errorf("line %d: bad review_count %q", line, rec[2])
			}
		}
		games = append(games, g)
	}
	return games, nil
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(v)
	})
}

// writeFile writes through a temporary file in the same directory and renames it
// into place so readers never observe a partial artifact.
func writeFile(path string, fill func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Error{Path: path, Cause: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return &Error{Path: path, Cause: err}
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return &Error{Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Path: path, Cause: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &Error{Path: path, Cause: err}
	}
	return nil
}

func readFile(path string, decode func(io.Reader) error) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Error{Path: path, Kind: domain.ErrArtifactMissing, Cause: err}
	}
	if err != nil {
		return &Error{Path: path, Kind: domain.ErrArtifactCorrupt, Cause: err}
	}
	defer f.Close()

	if err := decode(f); err != nil {
		return corrupt(path, err)
	}
	return nil
}

func corrupt(path string, cause error) error {
	return &Error{Path: path, Kind: domain.ErrArtifactCorrupt, Cause: cause}
}
