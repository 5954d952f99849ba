package gemini

import (
	"fmt"
	"strings"

	"github.com/mealmate-bot/mealmate/internal/database"
)

// Prompt builders for the event pipeline. The persona system instruction is
// part of the client configuration; these only carry the per-event task
// description and contextual payload.

// TextPrompt builds the prompt for a plain text message.
func TextPrompt(text string) string {
	return fmt.Sprintf("Your partner sent you this message:\n%s\n\nReply to them.", text)
}

// FoodPrompt builds the prompt for a food-classified image event.
// nutrition is the opaque payload from the nutrition lookup; it may be empty.
func FoodPrompt(food string, nutrition []byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your partner just sent a photo of what they are eating: %s.\n", food)
	if len(nutrition) > 0 {
		fmt.Fprintf(&sb, "Nutrition facts for it:\n%s\n", nutrition)
	}
	sb.WriteString("React to their meal in one or two sentences.")
	return sb.String()
}

// PersonPrompt builds the prompt for a person-photo event.
func PersonPrompt(labels []string) string {
	if len(labels) == 0 {
		return "Your partner sent you a photo of themselves. React warmly in one or two sentences."
	}
	return fmt.Sprintf(
		"Your partner sent you a photo of themselves. The photo shows: %s.\nReact warmly in one or two sentences.",
		strings.Join(labels, ", "))
}

// PhotoPrompt builds the prompt for a generic photo acknowledgment.
func PhotoPrompt(labels []string) string {
	if len(labels) == 0 {
		return "Your partner sent you a photo you couldn't quite make out. Acknowledge it cheerfully in one sentence."
	}
	return fmt.Sprintf(
		"Your partner sent you a photo showing: %s.\nAcknowledge it cheerfully in one or two sentences.",
		strings.Join(labels, ", "))
}

// DigestPrompt builds the weekly summary prompt from a user's meal records.
func DigestPrompt(meals []*database.Meal) string {
	var sb strings.Builder
	sb.WriteString("Here is everything your partner ate this week:\n")
	for _, m := range meals {
		fmt.Fprintf(&sb, "- [%s] %s", m.RecordedAt.Format("2006-01-02 15:04"), m.Food)
		if m.Nutrition != "" {
			fmt.Fprintf(&sb, " (nutrition: %s)", m.Nutrition)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nWrite them a short, affectionate weekly recap of their eating, with one playful observation.")
	return sb.String()
}
