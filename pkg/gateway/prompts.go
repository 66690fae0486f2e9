package gateway

import "fmt"

// systemPrompt precedes every request; masked values must survive the round
// trip so the anonymizer can restore them.
const systemPrompt = `You are part of a marketing production pipeline.
Some values are masked as tokens in square brackets, for example [MOTCLE_1a2b3c].
Copy every such token verbatim and never invent new ones.`

const copyPrompt = `You are a senior marketing copywriter for a telecom brand.
Write the advertising copy requested by the briefing below. Keep every price, date,
legal mention and placeholder in square brackets exactly as written.
Return only the copy text, with paragraphs separated by a blank line.

BRIEFING:
%s`

const designPrompt = `- Examples of generated design content:

%s

- COPY DOCUMENT (Marketing Blueprint):

%s

Turn the copy into a single self-contained HTML block with inline CSS.
Keep every placeholder in square brackets exactly as written.
Ensure the design aligns with the brand guidelines and effectively communicates the marketing message.
Always respond in %s.`

const fromComparisonPrompt = `You are a senior marketing copywriter.
Using the two documents below, write one improved advertising copy that keeps the
offers, prices and legal mentions they share. Keep placeholders in square brackets as written.
Return only the copy text.

DOCUMENT 1 (%s):
%s

DOCUMENT 2 (%s):
%s`

const scoreInstructions = `

Reply with one JSON object only. It must contain "similarity_score" (integer 0-100),
"content_match" (integer 0-100), "structure" (integer 0-100), "compatibility" (integer 0-100)
and "summary" (string).`

var comparisonPrompts = map[ComparisonType]string{
	ComparisonCopyDesign: `You are a senior french commercial design validator responsible for ensuring client deliverables meet marketing requirements.

VALIDATION CONTEXT:
- COPY document: Base marketing blueprint with all business requirements and structure
- DESIGN document: Final client-facing deliverable (HTML/PDF/SMS)

VALIDATION CRITERIA:
- Marketing concepts and messaging alignment
- Pricing accuracy, including promotional offers
- Legal disclaimers completeness
- Call-to-action consistency
- Contact information accuracy

COPY DOCUMENT (Marketing Blueprint):
%s

DESIGN DOCUMENT (Client Deliverable):
%s`,

	ComparisonSemantic: `Analyze the semantic similarity and meaning relationship between these two texts:

TEXT 1:
%s

TEXT 2:
%s

Focus on meaning, intent, and conceptual overlap rather than exact wording.`,

	ComparisonBriefCopy: `Check the factual consistency and accuracy between these two texts:

REFERENCE TEXT (assumed accurate):
%s

TEXT TO VERIFY:
%s

Identify any factual discrepancies, inconsistencies, or potential errors.`,
}

func comparisonPrompt(t ComparisonType, text1, text2 string) (string, error) {
	tmpl, ok := comparisonPrompts[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownComparison, t)
	}
	return fmt.Sprintf(tmpl, text1, text2) + scoreInstructions, nil
}
