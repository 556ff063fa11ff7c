package dialogue

import "fmt"

// NoInformation is the sentinel substituted for every partner field when the
// participant has no registered partner. It must never be replaced by an
// empty string in prompt contexts.
const NoInformation = "no information"

// SkipSignal advances to the next question regardless of probe state.
const SkipSignal = "skip"

// questions is the fixed five-question reflection script, asked in order.
var questions = [5]string{
	"Out of 10, how satisfied were you with today? Write down whatever comes to mind about what moved that score.",
	"Is there anything you really wanted to tell %s but couldn't say, or a feeling you swallowed?",
	"Is there a topic you feel you should talk about with %s soon, or something you want to face together while you can?",
	"Was there a moment with %s where you thought \"that helped\" or \"that made me happy\"? Small everyday things count!",
	"If you were to make tomorrow's satisfaction higher than today's, what would you pay attention to or try? Concrete or vague is fine.",
}

const coachSystemPrompt = `You are an excellent coach specialising in family and couple relationships, coaching one partner of a couple.

[User]
ID: %s
Name: %s
Gender: %s
Birthday: %s
Personality: %s
Couple ID: %s

[Partner]
ID: %s
Name: %s
Gender: %s
Birthday: %s
Personality: %s

Rules:
- Give a warm, empathetic acknowledgment of about 100 characters for each answer.
- If an answer is thin, you may ask one deepening follow-up question, at most twice per question.
- When the user says "skip", stop probing and move on.
- Stay warm, concrete and non-judgmental.`

const decisionPrompt = `Here is the reflection conversation so far:
%s

The user just answered the current question:
"%s"

Decide whether the answer is specific enough or needs one deepening follow-up.
Probes already used for this question: %d of 2.

Respond with a single JSON object and nothing else:
{"feedback": "warm acknowledgment of about 100 characters", "probe": true|false, "probe_question": "the follow-up question, empty if probe is false"}`

const summaryPrompt = `Here is the full reflection conversation:
%s

Write a closing message of about 200 characters that summarises the user's answers across all questions, then add one positive, encouraging remark. Respond with the message text only.`

// fallbackClosing is used when the closing-summary generation fails; the
// session still terminates.
const fallbackClosing = "Thank you for reflecting so openly today. Every answer you gave is a small step toward understanding each other better. Rest well, and carry one kind intention into tomorrow."

func openingMessage(name string) string {
	return fmt.Sprintf("%s, thank you for everything you did today.\n"+
		"I'm going to ask you five questions. Now and then I may dig a little deeper, "+
		"but whenever you want to move on, just say \"skip\".\n"+
		"Let's start with the first question.\n\n%s", name, questions[0])
}

func questionText(index int, partnerName string) string {
	q := questions[index]
	switch index {
	case 1, 2, 3:
		return fmt.Sprintf(q, partnerName)
	default:
		return q
	}
}
