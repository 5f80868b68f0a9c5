package llm

import "fmt"

const maxPromptText = 2000

const relevancePrompt = `Analyze the relevance of the following news article to the stock %[1]s (%[2]s).
Is this news item DIRECTLY about %[2]s (%[1]s) or its products, financials, market performance, leadership, or major partnerships?
News Article:
---
%[3]s
---
Score its direct relevance to %[2]s (%[1]s) on a scale of 1 to 5, where:
1 = Not relevant at all (e.g., about a completely different company or topic).
2 = Slightly relevant (e.g., mentions the industry but not the company, or a minor, indirect link).
3 = Moderately relevant (e.g., discusses a competitor, or a broader market trend affecting the company).
4 = Relevant (e.g., directly discusses the company, its products, or market situation but may not be major news).
5 = Highly relevant (e.g., significant news directly impacting %[2]s's (%[1]s) stock, like earnings, major announcements, legal issues, price targets by reputable analysts for THIS stock).

Provide a brief justification for your relevance score.
Return ONLY a JSON object with two keys: "relevance_score" (integer between 1 and 5) and "relevance_justification" (string).
Example for high relevance: {"relevance_score": 5, "relevance_justification": "The article directly reports on %[2]s's quarterly earnings announcement."}
Example for low relevance: {"relevance_score": 1, "relevance_justification": "The article is about a different company in an unrelated sector."}
`

const sentimentPrompt = `Analyze the sentiment of the following news text SPECIFICALLY FOR its potential impact on the stock: "%[1]s".
The news text is: "%[2]s"

Consider ONLY the direct implications for the stock's value or investor perception of "%[1]s".
If the news is not about "%[1]s" or has no clear financial implication for it, classify as Neutral.
Classify the sentiment strictly as 'Positive', 'Negative', or 'Neutral'.
Provide a brief, one-sentence justification for your classification, focusing on the key reasons for THIS stock.

Return ONLY a JSON object with two keys: "sentiment" (string) and "justification" (string).
Example for Positive: {"sentiment": "Positive", "justification": "The report of increased earnings for %[1]s is likely to boost investor confidence."}
Example for Neutral due to irrelevance: {"sentiment": "Neutral", "justification": "This news is about a different company and not relevant to %[1]s."}
`

func buildRelevancePrompt(title, snippet, ticker, companyName string) string {
	text := truncateRunes(fmt.Sprintf("Title: %s\nSnippet: %s", title, snippet), maxPromptText)
	return fmt.Sprintf(relevancePrompt, ticker, companyName, text)
}

func buildSentimentPrompt(text, ticker string) string {
	if ticker == "" {
		ticker = "this stock"
	}
	return fmt.Sprintf(sentimentPrompt, ticker, truncateRunes(text, maxPromptText))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
