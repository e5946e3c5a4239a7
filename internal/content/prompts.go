package content

// Prompt templates for faculty content generation. Arguments: question
// count, difficulty (where applicable), grounding context.

const assignmentPrompt = `You are an expert educator creating an assignment. Using the provided content, generate %[1]d assignment questions.

Difficulty Level: %[2]s

Guidelines:
- Create a mix of question types: theory, numerical, analytical, application-based
- Assign appropriate marks: 2-mark, 5-mark, 10-mark questions
- Include marking scheme for each question
- Ensure questions test different aspects and depth levels

Content:
%[3]s

Generate %[1]d well-structured assignment questions in this JSON format:
[
  {
    "question_number": 1,
    "question": "Question text here",
    "type": "theory/numerical/analytical/application",
    "marks": 5,
    "marking_scheme": "Point 1 (2 marks), Point 2 (2 marks), Point 3 (1 mark)",
    "sample_answer": "Brief outline of expected answer"
  }
]

Generate the assignment now:`

const mcqPrompt = `Create %[1]d multiple choice questions from the given content.

Difficulty: %[2]s

Requirements:
- 4 options (A, B, C, D) for each question
- Only ONE correct answer
- Distractors should be plausible but clearly incorrect
- Cover different topics from the content
- Mix factual recall, conceptual, and application-based questions

Content:
%[3]s

Generate MCQs in this JSON format:
[
  {
    "question_number": 1,
    "question": "What is...?",
    "options": {
      "A": "Option A text",
      "B": "Option B text",
      "C": "Option C text",
      "D": "Option D text"
    },
    "correct_answer": "B",
    "explanation": "Brief explanation of why B is correct"
  }
]

Generate the MCQs now:`

const vivaPrompt = `Generate %[1]d viva (oral examination) questions from the content.

Viva questions should:
- Test conceptual understanding
- Be brief and direct
- Allow for elaborate verbal answers
- Cover fundamental and advanced concepts
- Include some "why" and "how" questions

Content:
%[3]s

Generate questions in this JSON format:
[
  {
    "question_number": 1,
    "question": "Explain the significance of...",
    "type": "conceptual/definition/comparison/application",
    "key_points": ["Point 1 expected in answer", "Point 2", "Point 3"],
    "difficulty": "easy/medium/hard"
  }
]

Generate the viva questions now:`
