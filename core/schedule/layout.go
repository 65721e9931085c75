package schedule

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// LoadLayout reads a slot-layout override from a JSON file. An empty path
// returns the built-in default layout.
func LoadLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, errors.Wrapf(err, "reading layout file %s", path)
	}

	var layout Layout
	if err = json.Unmarshal(raw, &layout); err != nil {
		return Layout{}, errors.Wrapf(err, "parsing layout file %s", path)
	}
	if len(layout.Dias) == 0 || len(layout.Grupos) == 0 {
		return Layout{}, errors.Errorf("layout file %s: dias and grupos are required", path)
	}
	return layout, nil
}
