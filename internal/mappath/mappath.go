// Package mappath extracts labeled vector paths from an SVG world map into
// the JSON lookup the map frontend renders from.
package mappath

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/antchfx/xmlquery"
)

// ViewBox is the coordinate window of the bundled world map.
const ViewBox = "0 0 1000 600"

// Default input and output locations, relative to the frontend root.
const (
	DefaultInput  = "./src/assets/world.svg"
	DefaultOutput = "./src/assets/mapPaths.json"
)

const pathQuery = "//*[local-name()='path']"

// Entry is the generated artifact: the map's coordinate window and the path
// data of every shape that has an id.
type Entry struct {
	ViewBox  string            `json:"viewBox"`
	MapPaths map[string]string `json:"mapPaths"`
}

// Extract reads an SVG document and collects every path element carrying both
// an id and path data. A later duplicate id overwrites an earlier one.
func Extract(r io.Reader) (Entry, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return Entry{}, fmt.Errorf("parse svg: %w", err)
	}

	nodes, err := xmlquery.QueryAll(doc, pathQuery)
	if err != nil {
		return Entry{}, fmt.Errorf("query paths: %w", err)
	}

	entry := Entry{ViewBox: ViewBox, MapPaths: make(map[string]string, len(nodes))}
	for _, n := range nodes {
		id := n.SelectAttr("id")
		d := n.SelectAttr("d")
		if id == "" || d == "" {
			continue
		}
		entry.MapPaths[id] = d
	}
	return entry, nil
}

// Write encodes entry as two-space indented JSON.
func Write(w io.Writer, entry Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entry); err != nil {
		return fmt.Errorf("encode map paths: %w", err)
	}
	return nil
}

// Convert reads the SVG at inPath and writes the JSON artifact to outPath.
// The output is written to a temporary file in the same directory and renamed
// into place, so a failed run never leaves a truncated artifact.
func Convert(inPath, outPath string) (entry Entry, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Entry{}, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = in.Close() }()

	entry, err = Extract(in)
	if err != nil {
		return Entry{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".*")
	if err != nil {
		return Entry{}, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, entry); err != nil {
		_ = tmp.Close()
		return Entry{}, err
	}
	if err = tmp.Close(); err != nil {
		return Entry{}, fmt.Errorf("close output: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return Entry{}, fmt.Errorf("chmod output: %w", err)
	}
	if err = os.Rename(tmp.Name(), outPath); err != nil {
		return Entry{}, fmt.Errorf("rename output: %w", err)
	}
	return entry, nil
}
