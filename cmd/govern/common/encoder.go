package common

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

type Encode func(v interface{}, w io.Writer) error

var DefaultEncodes = map[string]Encode{
	"json": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, false)
	},
	"prettyjson": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, true)
	},
	"yaml": yamlEncode,
}

func jsonEncode(v interface{}, w io.Writer, pretty bool) error {
	e := json.NewEncoder(w)
	if pretty {
		e.SetIndent("", "  ")
	}

	return e.Encode(&v)
}

// yamlEncode goes through json first, so the json field names and
// marshalers apply to both formats.
func yamlEncode(v interface{}, w io.Writer) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var generic interface{}
	if err = yaml.Unmarshal(b, &generic); err != nil {
		return err
	}

	e := yaml.NewEncoder(w)
	if err = e.Encode(generic); err != nil {
		return err
	}

	return e.Close()
}

// GetEncoder returns the encoder registered under `name`.
func GetEncoder(name string) (Encode, error) {
	encode, found := DefaultEncodes[name]
	if !found {
		return nil, fmt.Errorf("unknown output format %q; one of %s", name, strings.Join(EncoderNames(), ", "))
	}

	return encode, nil
}

func EncoderNames() (names []string) {
	for name := range DefaultEncodes {
		names = append(names, name)
	}
	sort.Strings(names)

	return
}
