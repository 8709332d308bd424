package view

import "testing"

func TestPopupHTML(t *testing.T) {
	cases := []struct {
		name  string
		popup Popup
		want  string
	}{
		{
			name:  "image only",
			popup: Popup{ImageURL: PhotoURL("a.jpg")},
			want:  `<img src="/photos/a.jpg" class="geotagged-photo" />`,
		},
		{
			name: "missing and typed values",
			popup: Popup{ImageURL: PhotoURL("/b.jpg"), Labels: []Label{
				{Name: "missing"}, {Name: "n", Value: float64(3)}, {Name: "ok", Value: true},
			}},
			want: `<img src="/photos/b.jpg" class="geotagged-photo" /><br /><strong>missing</strong> <br /><strong>n</strong> 3<br /><strong>ok</strong> true`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.popup.HTML(); got != tc.want {
				t.Fatalf("got\n%s\nwant\n%s", got, tc.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{0.1, "0.1"},
		{float64(1234567), "1234567"},
		{int64(-4), "-4"},
		{false, "false"},
		{[]any{float64(1), float64(2)}, "[1,2]"},
		{map[string]any{"a": 1}, `{"a":1}`},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.in); got != tc.want {
			t.Fatalf("FormatValue(%v)=%q want %q", tc.in, got, tc.want)
		}
	}
}
