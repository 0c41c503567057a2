package redis

const keyPrefix = "quiz"

func questionsKey(source string) string {
	return keyPrefix + ":questions:" + source
}

func profileKey(username string) string {
	return keyPrefix + ":profile:" + username
}

func leaderboardKey(category string) string {
	return keyPrefix + ":leaderboard:" + category
}

func categoriesKey() string {
	return keyPrefix + ":leaderboard:categories"
}
