package actions

import (
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abdulachik/cinetrivia/internal/catalog"
	"github.com/abdulachik/cinetrivia/internal/validation"
)

// MsgSelectGenreOrMood is shown when the recommendation form is empty.
const MsgSelectGenreOrMood = "Please select at least one genre or a mood."

// RecommendForm is the recommendation request as submitted by the user.
type RecommendForm struct {
	Genres []string `json:"genres" form:"genres" validate:"dive,genre"`
	Mood   string   `json:"mood" form:"mood" validate:"omitempty,mood"`
}

func init() {
	for tag, options := range map[string][]string{"genre": catalog.Genres, "mood": catalog.Moods} {
		if err := validation.RegisterValidation(tag, oneOfList(options)); err != nil {
			panic(err)
		}
	}
	validation.RegisterMessage("genre", "Unknown genre.")
	validation.RegisterMessage("mood", "Unknown mood.")

	validation.RegisterStructValidation(validateRecommendForm, RecommendForm{})
	validation.RegisterMessage("genre_or_mood", MsgSelectGenreOrMood)
}

func oneOfList(options []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(options, fl.Field().String())
	}
}

func validateRecommendForm(sl validator.StructLevel) {
	f := sl.Current().Interface().(RecommendForm)
	if len(f.Genres) == 0 && f.Mood == "" {
		sl.ReportError(f.Genres, "genres", "Genres", "genre_or_mood", "")
	}
}

// Validate checks the form. A nil result means the form may be sent.
func (f RecommendForm) Validate() error {
	if err := validation.ValidateStruct(&f); err != nil {
		return err
	}
	return nil
}

// Phrase composes the mood and genres into the text sent to the provider,
// e.g. "a exciting comedy movie".
func (f RecommendForm) Phrase() string {
	parts := make([]string, 0, len(f.Genres)+1)
	if f.Mood != "" {
		parts = append(parts, f.Mood)
	}
	parts = append(parts, f.Genres...)
	return "a " + strings.ToLower(strings.Join(parts, " ")) + " movie"
}
