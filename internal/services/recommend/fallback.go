package recommend

import (
	"strings"

	"github.com/samber/lo"
	"norelock.dev/moodmix/backend/internal/models"
)

// category is a curated list selected when its name appears in the mood.
type category struct {
	name  string
	items []string
}

// keywordGroup redirects moods containing any keyword to a category.
type keywordGroup struct {
	keywords []string
	category string
}

// fallbackTables are scanned in declared order; the first category whose
// name is a substring of the lowercased mood wins.
var fallbackTables = map[models.MediaType][]category{
	models.MediaTypeMusic: {
		{"happy", []string{"Pharrell Williams - Happy", "The Beatles - Here Comes the Sun", "Queen - Don't Stop Me Now"}},
		{"sad", []string{"Johnny Cash - Hurt", "Mad World - Gary Jules", "Tears in Heaven - Eric Clapton"}},
		{"energetic", []string{"The Killers - Mr. Brightside", "Queen - We Will Rock You", "AC/DC - Thunderstruck"}},
		{"chill", []string{"Norah Jones - Come Away With Me", "Jack Johnson - Better Together", "Zero 7 - In the Waiting Line"}},
		{"romantic", []string{"Ed Sheeran - Perfect", "John Legend - All of Me", "Etta James - At Last"}},
	},
	models.MediaTypeMovies: {
		{"happy", []string{"The Grand Budapest Hotel", "Paddington", "The Princess Bride", "About Time"}},
		{"sad", []string{"Her", "Manchester by the Sea", "The Pursuit of Happyness", "Inside Out"}},
		{"action", []string{"Mad Max: Fury Road", "John Wick", "The Dark Knight", "Mission: Impossible - Fallout"}},
		{"thriller", []string{"Gone Girl", "Zodiac", "No Country for Old Men", "Prisoners"}},
		{"comedy", []string{"Superbad", "Bridesmaids", "Knives Out", "Game Night"}},
		{"romantic", []string{"Before Sunrise", "The Notebook", "Her", "Casablanca"}},
		{"scary", []string{"Hereditary", "The Conjuring", "Get Out", "A Quiet Place"}},
	},
	models.MediaTypeBooks: {
		{"happy", []string{"The Alchemist", "Eat Pray Love", "The Happiness Project", "Big Magic"}},
		{"sad", []string{"A Man Called Ove", "The Fault in Our Stars", "Me Before You", "The Light We Lost"}},
		{"thriller", []string{"Gone Girl", "The Girl with the Dragon Tattoo", "The Silent Patient", "Big Little Lies"}},
		{"romance", []string{"Pride and Prejudice", "The Notebook", "Me Before You", "It Ends with Us"}},
		{"inspiring", []string{"Atomic Habits", "The 7 Habits of Highly Effective People", "Educated", "Becoming"}},
	},
	models.MediaTypePodcasts: {
		{"educational", []string{"Radiolab", "Stuff You Should Know", "TED Talks Daily", "The Daily"}},
		{"comedy", []string{"Conan O'Brien Needs a Friend", "My Dad Wrote A Porno", "Comedy Bang! Bang!", "The Joe Rogan Experience"}},
		{"true_crime", []string{"Serial", "My Favorite Murder", "Criminal", "Dateline NBC"}},
		{"business", []string{"How I Built This", "The Tim Ferriss Show", "Masters of Scale", "Planet Money"}},
		{"storytelling", []string{"This American Life", "The Moth", "Reply All", "Heavyweight"}},
	},
}

// keywordGroups are checked in order after the category scan; the first
// group with a matching keyword overrides the category.
var keywordGroups = map[models.MediaType][]keywordGroup{
	models.MediaTypeMovies: {
		{[]string{"laugh", "funny", "humor"}, "comedy"},
		{[]string{"fear", "horror", "scary"}, "scary"},
		{[]string{"action", "adrenaline", "explosive"}, "action"},
	},
	models.MediaTypePodcasts: {
		{[]string{"learn", "educational", "knowledge"}, "educational"},
		{[]string{"business", "entrepreneur", "startup"}, "business"},
		{[]string{"crime", "mystery", "murder"}, "true_crime"},
	},
}

// defaultItems is used when a media type has no "happy" category.
func defaultItems(mediaType models.MediaType) []string {
	if items, ok := categoryItems(mediaType, "happy"); ok {
		return items
	}
	switch mediaType {
	case models.MediaTypeMovies:
		return []string{"The Shawshank Redemption"}
	case models.MediaTypeMusic:
		return []string{"The Beatles - Here Comes the Sun"}
	case models.MediaTypeBooks:
		return []string{"The Alchemist"}
	default:
		return []string{"This American Life"}
	}
}

func categoryItems(mediaType models.MediaType, name string) ([]string, bool) {
	c, ok := lo.Find(fallbackTables[mediaType], func(c category) bool {
		return c.name == name
	})
	return c.items, ok
}

// fallbackList selects the curated list for a mood. The returned slice is
// shared and must be copied before it is reordered.
func fallbackList(mood string, mediaType models.MediaType) []string {
	moodLower := strings.ToLower(mood)
	defaults := defaultItems(mediaType)
	selected := defaults

	for _, c := range fallbackTables[mediaType] {
		if strings.Contains(moodLower, c.name) {
			selected = c.items
			break
		}
	}

	for _, group := range keywordGroups[mediaType] {
		matched := lo.ContainsBy(group.keywords, func(keyword string) bool {
			return strings.Contains(moodLower, keyword)
		})
		if !matched {
			continue
		}
		if items, ok := categoryItems(mediaType, group.category); ok {
			selected = items
		} else {
			selected = defaults
		}
		break
	}

	return selected
}
