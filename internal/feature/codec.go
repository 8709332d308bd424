package feature

import (
	json "github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"
)

// goJSON routes orb's geojson encoding through goccy/go-json.
type goJSON struct{}

func (goJSON) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (goJSON) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func init() {
	geojson.CustomJSONMarshaler = goJSON{}
	geojson.CustomJSONUnmarshaler = goJSON{}
}
