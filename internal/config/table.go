package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/router"
	"gopkg.in/yaml.v3"
)

// Format is a route table file format.
type Format int

const (
	// FormatYAML is a YAML mapping from route name to route.
	FormatYAML Format = iota

	// FormatJSON is a JSON object from route name to route.
	FormatJSON
)

// String returns "yaml" or "json".
func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "yaml"
}

// FormatOf picks the table format from a file name or object key.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return 0, errors.New(errors.CodeInvalidTable).
		WithDetailf("cannot tell the format of %q", name).
		WithSuggestion("Use a .json, .yaml or .yml extension")
}

// DecodeRoutes reads a route table. Routes keep the order they appear in
// the document, since declaration order breaks ties between matches.
func DecodeRoutes(r io.Reader, format Format) (router.Routes, error) {
	if format == FormatJSON {
		return decodeJSON(r)
	}
	return decodeYAML(r)
}

// LoadRoutesFile reads a route table from disk.
func LoadRoutesFile(path string) (router.Routes, error) {
	format, err := FormatOf(path)
	if err != nil {
		return router.Routes{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return router.Routes{}, errors.New(errors.CodeSourceUnreadable).
			WithDetail(path).
			Wrap(err)
	}
	defer f.Close()

	routes, err := DecodeRoutes(f, format)
	if err != nil {
		return router.Routes{}, withSource(err, path)
	}
	return routes, nil
}

func decodeJSON(r io.Reader) (router.Routes, error) {
	var routes router.Routes
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err == io.EOF {
		return routes, nil
	}
	if err != nil {
		return router.Routes{}, invalidTable(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return router.Routes{}, errors.New(errors.CodeInvalidTable).
			WithDetail("route table must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return router.Routes{}, invalidTable(err)
		}
		name, _ := tok.(string)

		var route router.Route
		if err := dec.Decode(&route); err != nil {
			return router.Routes{}, invalidTable(fmt.Errorf("route %q: %w", name, err))
		}
		if err := routes.Add(router.RouteName(name), route); err != nil {
			return router.Routes{}, err
		}
	}

	if _, err := dec.Token(); err != nil {
		return router.Routes{}, invalidTable(err)
	}
	return routes, nil
}

func decodeYAML(r io.Reader) (router.Routes, error) {
	var routes router.Routes

	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return routes, nil
		}
		return router.Routes{}, invalidTable(err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return routes, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return router.Routes{}, errors.New(errors.CodeInvalidTable).
			WithDetailf("route table must be a mapping (line %d)", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		var route router.Route
		if err := value.Decode(&route); err != nil {
			return router.Routes{}, invalidTable(fmt.Errorf("route %q (line %d): %w", key.Value, key.Line, err))
		}
		if err := routes.Add(router.RouteName(key.Value), route); err != nil {
			return router.Routes{}, err
		}
	}
	return routes, nil
}

// EncodeRoutes writes routes in declaration order.
func EncodeRoutes(w io.Writer, routes router.Routes, format Format) error {
	if format == FormatJSON {
		return encodeJSON(w, routes)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range routes.Entries() {
		var value yaml.Node
		if err := value.Encode(e.Route); err != nil {
			return err
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(e.Name)},
			&value,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func encodeJSON(w io.Writer, routes router.Routes) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range routes.Entries() {
		if i > 0 {
			buf.WriteString(",")
		}
		name, err := json.Marshal(string(e.Name))
		if err != nil {
			return err
		}
		route, err := json.Marshal(e.Route)
		if err != nil {
			return err
		}
		buf.WriteString("\n  ")
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(route)
	}
	buf.WriteString("\n}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func invalidTable(err error) *errors.HistrouteError {
	return errors.New(errors.CodeInvalidTable).Wrap(err)
}

// withSource names the file or object a table error came from.
func withSource(err error, source string) error {
	he := errors.FromError(err, errors.CodeInvalidTable)
	if he.Detail == "" {
		return he.WithDetail(source)
	}
	return he.WithDetail(source + ": " + he.Detail)
}
