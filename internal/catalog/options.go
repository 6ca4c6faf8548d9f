package catalog

// Genres offered by the recommendation form.
var Genres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime", "Drama", "Fantasy",
	"Horror", "Mystery", "Romance", "Sci-Fi", "Thriller", "War", "Western",
}

// Moods offered by the recommendation form.
var Moods = []string{
	"Heartwarming", "Exciting", "Funny", "Intense", "Sad",
	"Thought-provoking", "Suspenseful", "Relaxing",
}
