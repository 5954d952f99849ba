package bot

import (
	"strings"

	"github.com/mealmate-bot/mealmate/internal/vision"
)

// foodKeywords are the label values (lowercased) that classify an image as
// a food photo.
var foodKeywords = map[string]bool{
	"food":    true,
	"cuisine": true,
	"dish":    true,
	"meal":    true,
}

const personKeyword = "person"

// Interpret derives the semantic classification of an image from its
// annotation. Matching is case-insensitive; label and object order is
// preserved. A nil annotation yields the zero Interpretation, which the
// router treats as a generic photo.
func Interpret(ann *vision.Annotation) Interpretation {
	if ann == nil {
		return Interpretation{}
	}

	interp := Interpretation{
		Labels:   ann.Labels,
		Objects:  ann.Objects,
		IsPerson: ann.FaceCount > 0,
	}

	for _, label := range ann.Labels {
		lower := strings.ToLower(label)
		if foodKeywords[lower] {
			interp.IsFood = true
		}
		if lower == personKeyword {
			interp.IsPerson = true
		}
	}
	for _, object := range ann.Objects {
		if strings.ToLower(object) == personKeyword {
			interp.IsPerson = true
		}
	}

	return interp
}
