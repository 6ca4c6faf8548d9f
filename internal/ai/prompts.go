package ai

import "fmt"

// RecommendPrompt asks for one movie matching a mood or genre phrase.
const RecommendPrompt = `You are a movie expert. Recommend one movie based on the specified mood or genre.
Provide the movie title, year, genre, a brief description, a rating out of 10, and its age rating.

Mood or Genre: %s
`

// FunFactPrompt asks for one piece of trivia about a movie.
const FunFactPrompt = `You are a movie trivia expert. Generate one interesting and relevant fun fact or behind-the-scenes trivia about the movie "%s".`

// PosterPrompt asks for poster artwork without any lettering.
const PosterPrompt = `Generate a minimalist, artistic movie poster for a %s film titled "%s". The plot is: %s. The poster should be visually striking and capture the essence of the movie's theme. Avoid using any text on the poster.`

// jsonInstructions is appended for providers without a native structured
// output mode.
const jsonInstructions = `

Respond with a single JSON object and nothing else, matching this shape:
%s`

const recommendShape = `{"title": "...", "year": 1999, "genre": "...", "description": "...", "rating": 8.5, "ageRating": "PG-13"}`

const funFactShape = `{"funFact": "..."}`

func recommendPrompt(in RecommendInput) string {
	return fmt.Sprintf(RecommendPrompt, in.MoodOrGenre)
}

func funFactPrompt(in FunFactInput) string {
	return fmt.Sprintf(FunFactPrompt, in.MovieTitle)
}

func posterPrompt(in PosterInput) string {
	return fmt.Sprintf(PosterPrompt, in.Genre, in.Title, in.Description)
}
