package rag

// Prompt templates for the three answer modes. Each takes the grounding
// context first and the user's query second.

const qaPrompt = `Use the following context to answer the question.
If you don't know the answer based on the context, say so clearly.

Context: %s

Question: %s

Answer: Provide a clear, concise answer with examples where appropriate.`

const studyNotesPrompt = `Using the provided context, create detailed study notes on: %[2]s

Format your response as follows:

**KEY CONCEPTS:**
- [List main concepts with brief definitions]

**DETAILED EXPLANATION:**
[Provide comprehensive explanation with examples]

**IMPORTANT POINTS TO REMEMBER:**
- [Highlight critical information]

**PRACTICE QUESTIONS:**
1. [Conceptual question with answer]
2. [Application question with answer]
3. [Analysis question with answer]

Context: %[1]s

Generate comprehensive study notes now:`

const practiceQuestionsPrompt = `Based on the context provided, generate practice questions about: %[2]s

Create a mix of question types:

**MULTIPLE CHOICE QUESTIONS (3 questions):**
[Each with 4 options and correct answer marked]

**SHORT ANSWER QUESTIONS (3 questions):**
[With brief model answers]

**CONCEPTUAL QUESTIONS (2 questions):**
[Deeper understanding questions with detailed answers]

Context: %[1]s

Generate the practice questions now:`

// insufficientContext is returned instead of a model call when retrieval
// yields nothing to ground on.
const insufficientContext = "I could not find relevant course material to answer this. " +
	"Make sure the related documents have been uploaded and processed."
