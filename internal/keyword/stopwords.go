package keyword

var koreanStopwords = toSet(
	"있는", "하는", "그", "및", "이", "그리고", "또는", "또한", "수", "등", "이런", "저런",
	"하며", "하고", "하지만", "그런", "것", "이것", "저것", "그것", "이는", "있다", "하다",
	"이다", "된다", "에서", "으로", "에게", "뿐만", "아니라", "만약", "때문에",
)

var englishStopwords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are",
	"aren", "as", "at", "be", "because", "been", "before", "being", "below", "between", "both",
	"but", "by", "can", "couldn", "did", "didn", "do", "does", "doesn", "doing", "don", "down",
	"during", "each", "few", "for", "from", "further", "had", "hadn", "has", "hasn", "have",
	"haven", "having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how",
	"i", "if", "in", "into", "is", "isn", "it", "its", "itself", "just", "me", "more", "most",
	"mustn", "my", "myself", "no", "nor", "not", "now", "of", "off", "on", "once", "only", "or",
	"other", "our", "ours", "ourselves", "out", "over", "own", "same", "shan", "she", "should",
	"shouldn", "so", "some", "such", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "these", "they", "this", "those", "through", "to", "too",
	"under", "until", "up", "very", "was", "wasn", "we", "were", "weren", "what", "when",
	"where", "which", "while", "who", "whom", "why", "will", "with", "won", "wouldn", "you",
	"your", "yours", "yourself", "yourselves",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
