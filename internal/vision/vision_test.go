package vision

import (
	"reflect"
	"testing"
)

func TestAnalyzeFilename(t *testing.T) {
	cases := []struct {
		filename string
		want     Analysis
	}{
		{
			filename: "black-leather-boots.jpg",
			want:     Analysis{Category: "Footwear", Color: "black", Attributes: []string{"leather"}},
		},
		{
			filename: "IMG_20240115_123456.jpg",
			want:     Analysis{},
		},
		{
			filename: "vintage_denim_jacket_blue.png",
			want:     Analysis{Category: "Clothing", Color: "blue", Attributes: []string{"vintage", "denim"}},
		},
		{
			filename: "/tmp/somewhere/RED-SNEAKERS.webp",
			want:     Analysis{Category: "Footwear", Color: "red"},
		},
		{
			filename: "handbag.jpeg",
			want:     Analysis{Category: "Bags"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			if got := AnalyzeFilename(tc.filename); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
