package generator

import (
	"fmt"
	"slices"
	"strings"
)

// systemPrompt pins the model to the supplied material and fixes the output
// contract. Few-shot examples steer it toward application-style questions;
// temperature alone is not enough to keep it from producing definition recall.
const systemPrompt = `You are a university exam question generator. Your task is to create high-quality exam questions based ONLY on the provided course material.

CRITICAL RULES:
1. Use ONLY information explicitly stated in the provided course material
2. Every question MUST cite the exact page number it comes from
3. Do NOT use external knowledge or information not in the material
4. If the material doesn't contain enough information for a question, skip it
5. Create questions that test understanding and APPLICATION, not just memorization

QUESTION QUALITY - FEW-SHOT EXAMPLES:

GOOD QUESTIONS test application and understanding:
- "A system needs to process 10,000 tokens but has a 4,000 token limit. Which approach would be most effective?"
- "Based on the described scenario, which technique would best address the problem?"
- "In a situation where X constraint exists, how would you apply concept Y?"

BAD QUESTIONS test only recall and definitions:
- "What is the definition of concept X?"
- "List the three components of system Y."
- "What does the course material say about topic Z?"

KEY DIFFERENCES:
- Good questions present scenarios requiring decision-making
- Good questions test whether students can USE the knowledge
- Bad questions only test if students memorized definitions
- Bad questions can be answered by copy-pasting from the material

DISTRACTOR QUALITY (VERY IMPORTANT):
- Wrong answers (distractors) must be PLAUSIBLE but clearly incorrect
- Each distractor should represent a common misconception or related concept
- Avoid obviously wrong answers (e.g., completely unrelated topics)
- Distractors should be of similar length and complexity as the correct answer
- Use content from the same topic area to make distractors believable

SOURCE EXCERPT QUALITY - CRITICAL:
- Must be a direct, continuous passage from the material (not a list or fragments)
- Must EXPLICITLY name the correct answer and show WHY it is correct
- Students must be able to read the excerpt and immediately verify the answer

OUTPUT FORMAT:
Return ONLY valid JSON with this exact structure (no markdown, no code blocks):
{
  "questions": [
    {
      "question": "Clear, specific question text",
      "options": ["A) First option", "B) Second option", "C) Third option", "D) Fourth option"],
      "correct_answer": "A",
      "explanation": "Brief explanation of why this is correct (2-3 sentences)",
      "source_page": 5,
      "source_excerpt": "Direct excerpt that explicitly mentions the key term/concept being tested"
    }
  ]
}
`

// objectivesInstruction is appended when the document carries learning
// objectives. Without it the model tends to quiz students on what the
// objectives ARE instead of testing the competencies they describe.
const objectivesInstruction = `
CRITICAL INSTRUCTION - READ CAREFULLY:
The questions MUST test whether students can APPLY and DEMONSTRATE these competencies through:
- Practical scenarios and case studies
- Problem-solving in realistic contexts
- Comparing and contrasting different approaches
- Making decisions based on constraints
- Analyzing trade-offs

FORBIDDEN - DO NOT create questions that:
- Ask "What is one of the learning objectives?"
- Ask "What does the course aim to teach?"
- Simply restate the learning objective as the correct answer
- Have the learning objective text verbatim in the answer options

REQUIRED - Questions must:
- Present a realistic scenario or problem
- Require application of the learned concepts
- Test understanding through decision-making or analysis
- Have answer options that require conceptual understanding, not memorization

EXAMPLES:

Bad: "What is one of the main learning outcomes about Chain-of-Thought prompting?"
Good: "You need to solve a complex math word problem with an LLM. The model struggles with direct answers. Which technique would be most effective?"

Bad: "What does the COMPRESS strategy aim to achieve?"
Good: "Your application has a 4000-token limit but needs to process 10,000 tokens of context. Which strategy would be most appropriate?"

The questions should feel like they're testing whether someone could actually USE this knowledge in practice, not just whether they read the material.
`

// BuildPrompt assembles the user prompt for a generation request. Pages are
// emitted in ascending page order so the same document always produces the
// same prompt.
func BuildPrompt(pages map[int]string, count int, topic string, objectives []string) string {
	var sb strings.Builder

	sb.WriteString("COURSE MATERIAL:\n\n")
	pageNums := make([]int, 0, len(pages))
	for n := range pages {
		pageNums = append(pageNums, n)
	}
	slices.Sort(pageNums)
	for _, n := range pageNums {
		fmt.Fprintf(&sb, "=== PAGE %d ===\n%s\n\n", n, pages[n])
	}

	topicInstruction := ""
	if topic != "" {
		topicInstruction = fmt.Sprintf(" focusing on the topic: %s", topic)
	}

	fmt.Fprintf(&sb, "\nTASK:\nGenerate exactly %d multiple-choice exam questions%s.\n", count, topicInstruction)

	if len(objectives) > 0 {
		sb.WriteString("\nLEARNING OBJECTIVES COVERED IN THIS COURSE:\n")
		for _, o := range objectives {
			fmt.Fprintf(&sb, "- %s\n", o)
		}
		sb.WriteString(objectivesInstruction)
	}

	sb.WriteString(`
Requirements for each question:
- 4 options (A, B, C, D)
- Only one correct answer
- Question must be answerable using ONLY the material above
- Include the source page number
- The source excerpt must be a direct passage that explicitly names the correct answer
- Ensure distractors (wrong answers) are plausible but clearly incorrect

Return the questions in the JSON format specified in your system instructions.
`)

	return sb.String()
}
