package main

// Message roles understood by the chat-completion API.
const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// chatMessage is a single turn in a conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Fixed prompts driving the reasoning protocol.
const (
	verificationPrompt = "Before giving the final answer, please verify your result using a different method and explain any discrepancies."
	finalAnswerPrompt  = "Please provide the final answer based on your reasoning above."

	// acknowledgement is the canned assistant turn that primes the model
	// before the first step.
	acknowledgement = "Thank you! I will now think step by step following my instructions, starting at the beginning after decomposing the problem."
)

const systemDirective = `You are an expert AI assistant that explains your reasoning step by step.
    For each step, provide a title that describes what you're doing in that step, along with the content.
    Decide if you need another step or if you're ready to give the final answer.
    Respond in JSON format with 'title', 'content', and 'next_action' (either 'continue' or 'final_answer') keys.
    USE AS MANY REASONING STEPS AS NECESSARY TO ENSURE ACCURACY.
    ALWAYS DOUBLE-CHECK YOUR RESULTS AND CONSIDER EDGE CASES.
    IF YOU FIND A DISCREPANCY IN YOUR REASONING, EXPLAIN IT AND CORRECT IT.
    BE AWARE OF YOUR LIMITATIONS AS AN LLM AND WHAT YOU CAN AND CANNOT DO.
    IN YOUR REASONING, INCLUDE EXPLORATION OF ALTERNATIVE ANSWERS.
    CONSIDER YOU MAY BE WRONG, AND IF YOU ARE WRONG IN YOUR REASONING, WHERE IT WOULD BE.
    FULLY TEST ALL OTHER POSSIBILITIES. YOU CAN BE WRONG.
    WHEN YOU SAY YOU ARE RE-EXAMINING, ACTUALLY RE-EXAMINE, AND USE ANOTHER APPROACH TO DO SO.
    DO NOT JUST SAY YOU ARE RE-EXAMINING. USE AT LEAST 3 METHODS TO DERIVE THE ANSWER. USE BEST PRACTICES.
    IF YOU ARE UNSURE OF SOMETHING, SAY SO. DO NOT MAKE UP FACTS.
    Example of a valid JSON response:
    ` + "```json" + `
    {
        "title": "Identifying Key Information",
        "content": "To begin solving this problem, we need to carefully examine the given information and identify the crucial elements that will guide our solution process. This involves...",
        "next_action": "continue"
    }
    ` + "```" + `
`

// initialConversation builds the three fixed opening turns for a query.
func initialConversation(query string) []chatMessage {
	return []chatMessage{
		{Role: roleSystem, Content: systemDirective},
		{Role: roleUser, Content: query},
		{Role: roleAssistant, Content: acknowledgement},
	}
}

// appendMessage returns the conversation with one more turn appended.
func appendMessage(conv []chatMessage, role, content string) []chatMessage {
	return append(conv, chatMessage{Role: role, Content: content})
}
