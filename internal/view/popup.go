package view

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Label is one name/value line of a popup.
type Label struct {
	Name  string
	Value any
}

// Popup is the content bound to a feature with an image.
type Popup struct {
	ImageURL string
	Labels   []Label
}

// PhotoURL joins an image:path onto PhotoPrefix.
func PhotoURL(path string) string {
	return PhotoPrefix + strings.TrimPrefix(path, "/")
}

// HTML renders the popup the way the web viewer shows it.
func (p *Popup) HTML() string {
	var sb strings.Builder
	sb.WriteString(`<img src="`)
	sb.WriteString(html.EscapeString(p.ImageURL))
	sb.WriteString(`" class="geotagged-photo" />`)
	if len(p.Labels) == 0 {
		return sb.String()
	}
	sb.WriteString("<br />")
	for i, l := range p.Labels {
		if i > 0 {
			sb.WriteString("<br />")
		}
		sb.WriteString("<strong>")
		sb.WriteString(html.EscapeString(l.Name))
		sb.WriteString("</strong> ")
		sb.WriteString(html.EscapeString(FormatValue(l.Value)))
	}
	return sb.String()
}

// Text renders the popup as plain lines for terminal display.
func (p *Popup) Text() []string {
	out := make([]string, 0, len(p.Labels)+1)
	out = append(out, p.ImageURL)
	for _, l := range p.Labels {
		out = append(out, l.Name+" "+FormatValue(l.Value))
	}
	return out
}

// FormatValue renders a property value for display. Missing values are empty.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
