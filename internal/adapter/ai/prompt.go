// Package ai holds pieces shared by the generation backends: the instruction
// template, response cleaning for malformed LLM output, and parsing of the
// fixed lesson shape.
package ai

// LessonInstruction is the fixed instruction template sent to remote backends.
// The raw narrative is appended by the caller after truncation.
const LessonInstruction = `You are an assistant that structures AI-implementation success stories into lessons learned.

Analyze the following content and structure it into a lessons learned format. Provide:
1. An 8-10 word title that captures the essence of the scenario
2. A concise summary (50-80 words) encompassing the challenge, solution, and impact
3. A detailed breakdown (100 words each) under these headings:
   - THE CHALLENGE: Identify the key problems, pain points, and root causes
   - OUR SOLUTION: Describe the implemented solution and approach taken
   - IMPACT & RESULTS: Detail the measurable outcomes and benefits realized
   - TIPS & WARNINGS: Highlight the dos and don'ts for lesson users

Structure your response as a JSON object with these exact keys:

{
  "title": "8-10 word title capturing the essence of the scenario",
  "quickSummary": "50-80 word summary encompassing challenge, solution, and impact",
  "problem": "100 words identifying key problems, pain points, and root causes",
  "solution": "100 words describing the implemented solution and approach taken",
  "impact": "100 words detailing measurable outcomes and benefits realized",
  "tipsWarnings": "Highlight dos and don'ts for lesson users",
  "tags": ["3-5 relevant technical tags"],
  "difficulty": "Beginner|Intermediate|Advanced",
  "timeToImplement": "realistic estimate like '2-4 hours' or '1-2 days'"
}

Return ONLY the JSON object, no additional text.`

// MaxCompletionTokens bounds the completion size requested from remote backends.
const MaxCompletionTokens = 1500
