// Package vision is a best-effort stand-in for an external image analysis
// service. It guesses product attributes from filename keywords and never
// inspects pixel data.
package vision

import (
	"path/filepath"
	"strings"
)

// Analysis holds heuristic guesses derived from an image filename. Empty
// fields mean no guess.
type Analysis struct {
	Category   string   `json:"category,omitempty"`
	Color      string   `json:"color,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

// Ordered so the first match wins deterministically.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"tshirt", "Clothing"},
	{"shirt", "Clothing"},
	{"dress", "Clothing"},
	{"jacket", "Clothing"},
	{"jeans", "Clothing"},
	{"hoodie", "Clothing"},
	{"sneaker", "Footwear"},
	{"shoe", "Footwear"},
	{"boot", "Footwear"},
	{"sandal", "Footwear"},
	{"heel", "Footwear"},
	{"backpack", "Bags"},
	{"bag", "Bags"},
	{"purse", "Bags"},
	{"watch", "Accessories"},
	{"belt", "Accessories"},
	{"hat", "Accessories"},
	{"scarf", "Accessories"},
	{"ring", "Jewelry"},
	{"necklace", "Jewelry"},
	{"bracelet", "Jewelry"},
	{"phone", "Electronics"},
	{"laptop", "Electronics"},
	{"camera", "Electronics"},
	{"lamp", "Home"},
	{"chair", "Home"},
	{"table", "Home"},
	{"ball", "Sports"},
	{"racket", "Sports"},
	{"bike", "Sports"},
	{"book", "Books"},
	{"toy", "Toys"},
	{"lego", "Toys"},
}

var colorKeywords = []string{
	"black", "white", "red", "blue", "green", "yellow",
	"brown", "grey", "gray", "pink", "purple", "orange", "beige",
}

var attributeKeywords = []string{
	"vintage", "leather", "denim", "wool", "cotton", "silk",
	"handmade", "designer", "retro",
}

// AnalyzeFilename derives category, color and attribute guesses from the
// image filename. It cannot fail; an unrecognized name yields an empty
// Analysis.
func AnalyzeFilename(filename string) Analysis {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))

	var a Analysis
	for _, entry := range categoryKeywords {
		if strings.Contains(name, entry.keyword) {
			a.Category = entry.category
			break
		}
	}
	for _, color := range colorKeywords {
		if strings.Contains(name, color) {
			a.Color = color
			break
		}
	}
	for _, attr := range attributeKeywords {
		if strings.Contains(name, attr) {
			a.Attributes = append(a.Attributes, attr)
		}
	}
	return a
}
