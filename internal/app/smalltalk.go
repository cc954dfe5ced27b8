package app

import "regexp"

// Canned replies for common phrases. Checked in order, first match wins.
var smallTalk = []struct {
	pattern  *regexp.Regexp
	response string
}{
	{regexp.MustCompile(`(?i)\b(hello|hi)\b`), "Hello there!"},
	{regexp.MustCompile(`(?i)(how are you|how's it going)`), "I'm a bot, but I'm doing great! How about you?"},
	{regexp.MustCompile(`(?i)(what can you do|help|features)`), "I can manage tasks, generate reports, and add users. Use the main menu to see the options."},
	{regexp.MustCompile(`(?i)what is your name`), "I am a task management bot!"},
	{regexp.MustCompile(`(?i)(thank you|thanks)`), "You're welcome! Happy to help."},
	{regexp.MustCompile(`(?i)\b(bye|goodbye)\b`), "Goodbye! Have a great day."},
}

func smallTalkResponse(text string) (string, bool) {
	for _, qa := range smallTalk {
		if qa.pattern.MatchString(text) {
			return qa.response, true
		}
	}
	return "", false
}
