package ai

import (
	"fmt"

	"github.com/shanehull/filinglens/internal/types"
)

const systemInstruction = `
# [INSTRUCTION]

You are a natural language understanding engine for annual regulatory filings (Form 10-K).

Your task is to annotate the provided filing text and return three things:

1. **Keywords:** the most important keywords and key phrases, each with its relevance to the document (0 to 1) and the number of times it occurs.
2. **Sentiment:** the overall document sentiment as a score between -1 (negative) and 1 (positive), with a label.
3. **Relations:** relation triples between named entities (people, organizations, locations, products), each with a predicate type such as employedBy, locatedAt, ownerOf, partOf or affectedBy, a subject and an object.

---

# [CRITICAL INSTRUCTION]

- Use entity and keyword text exactly as it appears in the document.
- Do not return markup artifacts or HTML entity names (e.g. "nbsp", "amp") as keywords.
- Only report relations that are explicitly stated in the text.
- If the text contains no relations, return an empty list.
`

const userPromptTemplate = `
Annotate the following %d annual filing for %s:
---
%s
---
`

func buildUserPrompt(entity string, year types.FiscalYear, text string) string {
	return fmt.Sprintf(userPromptTemplate, int(year), entity, text)
}
