package workflow

import (
	"fmt"
	"strings"

	"github.com/shaiso/Critiquely/internal/domain"
)

// Заголовок и тело создаваемого PR.
const (
	prTitle = "Critiquely improvements"
	prBody  = "Automated code review fixes and improvements."
)

// inspectPrompt — инструкция на инспекцию одного файла: смотреть
// только изменённые строки, вернуть не более трёх рекомендаций
// строго JSON-массивом.
func inspectPrompt(file domain.ModifiedFile, content string) string {
	lines := make([]string, len(file.LinesChanged))
	for i, n := range file.LinesChanged {
		lines[i] = fmt.Sprintf("%d", n)
	}

	return fmt.Sprintf(
		"You are a senior code reviewer.\n\n"+
			"File: %s\n"+
			"Modified lines: [%s]\n\n"+
			"Review only sections directly impacted by the modifications. "+
			"Provide up to 3 high-impact recommendations in JSON array only.\n\n"+
			"Output format:\n"+
			`[{"file":"<filename>","summary":"<github commit style summary using `+
			`conventional commit syntax>","recommendation":"<recommendation>"}]`+"\n\n"+
			"You can have multiple objects for a specific file if there are "+
			"multiple recommendations.\n\n"+
			"**DO NOT** include anything other than the JSON list\n\n"+
			"File contents:\n%s",
		file.Filename, strings.Join(lines, ", "), content)
}

// applyPrompt — инструкция на применение одной рекомендации:
// выбрать и вызвать ровно один инструмент.
func applyPrompt(rec *domain.Recommendation, content string) string {
	return fmt.Sprintf(
		"You are a coding assistant. A user requested edits to a source file.\n\n"+
			"File path: %s\n\n"+
			"File contents:\n%s\n\n"+
			"Requested changes:\n%s\n\n"+
			"Choose and invoke a tool from your toolkit. Return only the invocation.",
		rec.File, content, rec.Recommendation.String())
}

// commentBody — формат комментария на оригинальном PR.
func commentBody(prURL string) string {
	return fmt.Sprintf(
		"**Critiquely Review Complete**\n\n"+
			"**Review PR:** %s\n\n"+
			"The improvements include automated code review fixes and enhancements. "+
			"Please review the changes and merge if they look good!",
		prURL)
}

// stripMarkdownJSON снимает обёртку markdown code fence с ответа модели.
// Модели регулярно заворачивают JSON в ```json ... ``` вопреки инструкции.
func stripMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		}
		if strings.HasSuffix(content, "```") {
			content = strings.TrimRight(content[:len(content)-3], " \t\n")
		}
	}

	return strings.TrimSpace(content)
}
