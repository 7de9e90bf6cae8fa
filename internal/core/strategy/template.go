package strategy

import (
	"fmt"

	"codecorpus/internal/core/dataset"
)

// Template is the chat prompt for one strategy applied to one record
// For FunctionImplementation the chat reply becomes the instruction and Instruction is empty
type Template struct {
	System      string
	User        string
	Instruction string
}

// DefaultResponseLanguage is the natural language answers are requested in
const DefaultResponseLanguage = "Korean"

// Build maps a record to its prompt for kind k
// language is the natural language the answer should be written in
func Build(k Kind, r dataset.CodeRecord, language string) Template {
	if language == "" {
		language = DefaultResponseLanguage
	}
	code := r.Content
	block := Fence("", code)

	switch k {
	case Explanation:
		return Template{
			System: "You are an expert who analyses code and explains it clearly.",
			User: fmt.Sprintf(`Analyse the following code file (%s) and explain it in detail in %s:

%s

Cover:
1. The main purpose and behaviour of the code
2. The role of the main functions and classes
3. Important logic or algorithms
4. Libraries and dependencies used`, r.FilePath, language, block),
			Instruction: "Analyse the following code and explain it in detail:\n\n" + block,
		}
	case Documentation:
		return Template{
			System: "You are a code documentation expert who writes readable comments and docstrings.",
			User: fmt.Sprintf(`Add appropriate comments and docstrings to the following code:

%s

- add docstrings to functions and classes
- add inline comments to complex logic
- write them in %s`, block, language),
			Instruction: "Add comments and docstrings to the following code:\n\n" + block,
		}
	case Improvement:
		return Template{
			System: "You are a senior developer specialising in code review and improvement.",
			User: fmt.Sprintf(`Analyse the following code and propose improvements, answering in %s:

%s

Consider:
1. Performance optimisations
2. Readability
3. Error handling
4. Best practices
5. The improved code`, language, block),
			Instruction: "Analyse the following code and propose improvements:\n\n" + block,
		}
	case Completion:
		partial := Fence("", CompletionPrefix(code))
		return Template{
			System: "You are an AI assistant that helps complete code.",
			User: fmt.Sprintf(`Analyse the following unfinished code and complete the rest:

%s

Original file: %s
Keep the logical flow while completing the code. Write any explanation in %s.`, partial, r.FilePath, language),
			Instruction: "Complete the following unfinished code:\n\n" + partial,
		}
	case FunctionImplementation:
		return Template{
			System: "You are an expert at turning code into natural-language requirements.",
			User: fmt.Sprintf(`Turn the following code into a natural-language requirement, written in %s as if asking a developer to implement it:

%s

Format: "Please implement the following functionality: ..."`, language, block),
		}
	case BugDetection:
		return Template{
			System: "You are an expert at finding bugs and security vulnerabilities in code.",
			User: fmt.Sprintf(`Analyse the following code and find potential bugs, errors and security vulnerabilities, answering in %s:

%s

Include:
1. The problems found
2. The severity of each problem
3. How to fix it
4. The fixed code`, language, block),
			Instruction: "Find and fix bugs or problems in the following code:\n\n" + block,
		}
	case Refactoring:
		return Template{
			System: "You are a clean code and refactoring expert.",
			User: fmt.Sprintf(`Refactor the following code, explaining in %s:

%s

Refactoring principles:
1. Apply DRY (Don't Repeat Yourself)
2. Improve function and variable names
3. Improve the code structure
4. Apply design patterns where needed
5. Compare before and after`, language, block),
			Instruction: "Refactor the following code according to clean code principles:\n\n" + block,
		}
	case Summary:
		return Template{
			System: "You are an expert at summarising code concisely and clearly.",
			User: fmt.Sprintf(`Summarise the following code concisely in %s (3-5 sentences):

%s

Include:
- main functionality
- core logic
- inputs and outputs`, language, block),
			Instruction: "Summarise the following code concisely:\n\n" + block,
		}
	}
	panic(fmt.Sprintf("strategy: unhandled kind %d", k))
}
