package telegram

import (
	"strings"

	"reportes/backend/internal/localization"
	"reportes/backend/internal/models"
)

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// escapeMarkdown escapes citizen text for the legacy Markdown parse mode.
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// FormatEvent renders evt for an entity chat. It returns false when the event
// carries nothing worth notifying, e.g. an update that only changed the rating.
func FormatEvent(l *localization.Localizer, lang string, evt models.ReportEvent) (string, bool) {
	title := escapeMarkdown(evt.Title)
	if title == "" {
		title = evt.ReportID
	}

	switch evt.Type {
	case models.EventReportCreated:
		address := escapeMarkdown(evt.Address)
		if address == "" {
			address = l.GetString(lang, "location_unknown")
		}
		lines := []string{l.Format(lang, "report_routed", escapeMarkdown(evt.EntityName), title, address)}
		if evt.Confidence > 0 {
			lines = append(lines, l.Format(lang, "report_routed_auto", evt.Confidence))
		} else {
			lines = append(lines, l.GetString(lang, "report_routed_manual"))
		}
		return strings.Join(lines, "\n"), true

	case models.EventReportUpdated:
		var lines []string
		if evt.PreviousEntity != "" && evt.PreviousEntity != evt.EntityName {
			lines = append(lines, l.Format(lang, "report_reassigned", title, escapeMarkdown(evt.EntityName)))
		}
		if evt.PreviousStatus != "" && evt.PreviousStatus != evt.Status {
			lines = append(lines, l.Format(lang, "report_status_changed", title,
				l.StatusLabel(lang, evt.PreviousStatus), l.StatusLabel(lang, evt.Status)))
		}
		if len(lines) == 0 {
			return "", false
		}
		return strings.Join(lines, "\n"), true

	case models.EventReportDeleted:
		return l.Format(lang, "report_deleted", title), true

	case models.EventCommentCreated:
		return l.Format(lang, "comment_created", title), true
	}
	return "", false
}

// recipients lists the entities that must hear about evt. A reassignment
// notifies both the old and the new entity.
func recipients(evt models.ReportEvent) []string {
	var names []string
	if evt.EntityName != "" {
		names = append(names, evt.EntityName)
	}
	if evt.PreviousEntity != "" && evt.PreviousEntity != evt.EntityName {
		names = append(names, evt.PreviousEntity)
	}
	return names
}
