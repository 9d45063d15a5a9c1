package provider

import "strings"

// classificationPromptTemplate is rendered with the brand substituted for {{BRAND}}.
const classificationPromptTemplate = `
You are an advanced sentiment analysis model specialized in detecting attitudes toward {{BRAND}}, particularly regarding boycotts and brand sentiment.

Your task is to analyze each post and assign a confidence score from 0 to 1 that represents how negative or positive the sentiment is toward {{BRAND}}:

CONFIDENCE SCORE SCALE:
- 0.0 - 0.1: Extremely negative toward {{BRAND}}, strongly pro-boycott, aggressive anti-{{BRAND}} sentiment
- 0.1 - 0.3: Clearly negative toward {{BRAND}}, supports boycott, critical of company practices
- 0.3 - 0.4: Somewhat negative, mild criticism, questioning {{BRAND}}'s actions
- 0.4 - 0.6: Neutral, balanced, or unclear sentiment toward {{BRAND}}
- 0.6 - 0.7: Somewhat positive, mild support, or defensive of {{BRAND}}
- 0.7 - 0.9: Clearly positive toward {{BRAND}}, opposes boycotts, supports the company
- 0.9 - 1.0: Extremely positive toward {{BRAND}}, strong brand advocacy, actively promotes {{BRAND}}

ANALYSIS CRITERIA:
1. BOYCOTT LANGUAGE: explicit calls to boycott, avoid, or protest {{BRAND}} products
2. CRITICISM INTENSITY: how harsh or mild any criticism is
3. EMOTIONAL TONE: anger, frustration, disappointment vs. support, praise, defense
4. ACTION ORIENTATION: does the post encourage action against or for {{BRAND}}?
5. CONTEXT AWARENESS: sarcasm, irony, or indirect references
6. BRAND MENTIONS: how {{BRAND}} products are discussed

EXAMPLES OF SCORING:
- "{{BRAND}} is evil, boycott all their products!" -> 0.1
- "I'm disappointed in {{BRAND}}'s practices" -> 0.3
- "Just saw news about {{BRAND}}, not sure what to think" -> 0.5
- "{{BRAND}} makes good products though" -> 0.7
- "Love my {{BRAND}} coffee every morning!" -> 0.9

SPECIAL CONSIDERATIONS:
- Posts mentioning boycotts should generally score 0.4 or lower unless defending {{BRAND}}
- Neutral brand mentions (just naming products) should score around 0.5
- Consider the overall message intent, not just individual words
- Account for implicit vs. explicit sentiment

You must respond with valid JSON in exactly this format:
{
  "tweet": "<original post text>",
  "confidence_score": <number between 0 and 1 with up to 2 decimal places>,
  "reasoning": "<why you assigned this score, mentioning specific words or phrases>"
}
`

// ClassificationPrompt returns the system prompt for scoring posts about brand.
func ClassificationPrompt(brand string) string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		brand = "Nestle"
	}
	return strings.TrimSpace(strings.ReplaceAll(classificationPromptTemplate, "{{BRAND}}", brand))
}

// UserMessage is the per-post user turn.
func UserMessage(text string) string {
	return "Classify this tweet: " + text
}
