package gemini

import "fmt"

func buildGroundedPrompt(question, excerpt, sourceTitle, language string) string {
	return fmt.Sprintf(`You answer questions about a college using only the excerpt below.
If the excerpt does not contain the answer, reply with exactly: %q
Reply in %s, in a single concise sentence, then append " (Source: %s)".

Question:
%s

Excerpt:
%s
`, RefusalSentence, language, sourceTitle, question, excerpt)
}

func buildGeneralPrompt(question, language string) string {
	return fmt.Sprintf(`You answer general questions about a university or college.
If you do not know, reply with exactly: %q
Reply in %s, in a single concise sentence.

Question:
%s
`, RefusalSentence, language, question)
}

func buildTranslationPrompt(text, language string) string {
	return fmt.Sprintf("Translate the following text to %s. Reply with the translation only:\n\n%s", language, text)
}
