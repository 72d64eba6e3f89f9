package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/xaenox/cafe-bot/internal/business"
	"github.com/xaenox/cafe-bot/internal/catalog"
	"github.com/xaenox/cafe-bot/internal/classifier"
	"github.com/xaenox/cafe-bot/internal/loyalty"
	"github.com/xaenox/cafe-bot/internal/models"
)

// escapeMarkdown escapes special characters for MarkdownV2
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func hashtag(s string) string {
	return "#" + strings.ReplaceAll(s, " ", "_")
}

func popularityBadge(popularity int) string {
	switch {
	case popularity >= 90:
		return "🔥"
	case popularity >= 80:
		return "⭐"
	default:
		return "🌱"
	}
}

func describeFilter(state models.FilterState) string {
	var parts []string
	if state.Category != "" && state.Category != models.CategoryAll {
		parts = append(parts, "category "+string(state.Category))
	}
	if state.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("search %q", state.SearchTerm))
	}
	if len(state.Tags) > 0 {
		tags := make([]string, len(state.Tags))
		for i, t := range state.Tags {
			tags[i] = hashtag(string(t))
		}
		parts = append(parts, "tags "+strings.Join(tags, " "))
	}
	return strings.Join(parts, ", ")
}

func formatMenu(items []models.CatalogEntry, state models.FilterState) string {
	var sb strings.Builder
	sb.WriteString("*Our Menu*\n")
	if f := describeFilter(state); f != "" {
		sb.WriteString("_" + escapeMarkdown("Filtered by "+f) + "_\n")
	}
	sb.WriteString("\n")

	if len(items) == 0 {
		sb.WriteString(escapeMarkdown("No items match your filters. Use /clear to clear all filters."))
		return sb.String()
	}

	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%s *%s* · %s\n",
			popularityBadge(item.Popularity),
			escapeMarkdown(item.Name),
			escapeMarkdown(fmt.Sprintf("$%.2f", item.Price))))
		sb.WriteString("_" + escapeMarkdown(item.Description) + "_\n")
		tags := make([]string, len(item.Tags))
		for i, t := range item.Tags {
			tags[i] = escapeMarkdown(hashtag(string(t)))
		}
		sb.WriteString(strings.Join(tags, " ") + "\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatGallery(photos []models.CatalogEntry, likes catalog.LikeSet, category models.Category) string {
	var sb strings.Builder
	sb.WriteString("*Photo Gallery*\n")
	counts := catalog.CategoryCounts(catalog.Gallery(), catalog.GalleryCategories)
	buttons := make([]string, len(counts))
	for i, c := range counts {
		label := fmt.Sprintf("%s (%d)", c.Category, c.Count)
		if c.Category == category {
			label = "[" + label + "]"
		}
		buttons[i] = label
	}
	sb.WriteString(escapeMarkdown(strings.Join(buttons, " · ")) + "\n\n")

	for _, p := range photos {
		heart := "🤍"
		if likes.Has(p.ID) {
			heart = "❤️"
		}
		tags := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = escapeMarkdown(hashtag(string(t)))
		}
		sb.WriteString(fmt.Sprintf("%s *%s* %s %d\n%s\n",
			escapeMarkdown(p.ID+"."),
			escapeMarkdown(p.Description),
			heart,
			catalog.LikeCount(p, likes),
			strings.Join(tags, " ")))
	}
	sb.WriteString("\n" + escapeMarkdown("Use /like <id> to like a photo, or send us your own!"))
	return sb.String()
}

func formatHours(panel *business.Panel, now time.Time) string {
	info := panel.Info()
	today := panel.Today(now).Day

	var sb strings.Builder
	sb.WriteString("🕐 " + panel.Status(now) + "\n\n")
	for _, day := range info.Hours {
		marker := "  "
		if day.Day == today {
			marker = "▶ "
		}
		sb.WriteString(fmt.Sprintf("%s%-9s %s\n", marker, day.Day, business.FormatHours(day)))
	}
	sb.WriteString("\n📍 " + info.Address + "\n")
	sb.WriteString("📞 " + info.Phone + "\n")
	sb.WriteString("✉️ " + info.Email + "\n")

	amenities := make([]string, len(info.Amenities))
	for i, a := range info.Amenities {
		amenities[i] = a.Name
	}
	sb.WriteString("\n" + strings.Join(amenities, " · "))
	return sb.String()
}

func formatPoints(state models.LoyaltyState, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⭐ You have %d pts\n", state.Points))
	sb.WriteString(fmt.Sprintf("Progress to %s: %d/%d (%.0f%%)",
		loyalty.NextRewardName, state.Points, loyalty.NextRewardTarget, loyalty.Progress(state.Points)))
	if togo := loyalty.PointsToGo(state.Points); togo > 0 {
		sb.WriteString(fmt.Sprintf(", %d points to go!", togo))
	}
	sb.WriteString("\n\nRewards:\n")
	for _, r := range loyalty.Rewards(state.Points) {
		mark := "○"
		if r.Unlocked {
			mark = "🏆"
		}
		sb.WriteString(fmt.Sprintf("%s %s (%d points)\n", mark, r.Name, r.Points))
	}

	sb.WriteString("\nEarn more points:\n")
	for _, e := range loyalty.EarningRules {
		sb.WriteString(fmt.Sprintf("• %s: %d pts\n", e.Activity, e.Points))
	}

	switch {
	case state.Spinning:
		sb.WriteString("\n🎡 Your wheel is spinning...")
	case loyalty.CanSpin(state.LastSpin, now):
		sb.WriteString("\n🎁 Your daily spin is ready! Use /spin")
	default:
		sb.WriteString("\nYou can spin once every 24 hours. Come back tomorrow!")
	}
	return sb.String()
}

func formatHistory(messages []*models.ChatMessage) string {
	var sb strings.Builder
	sb.WriteString("*Your recent messages:*\n\n")
	for _, msg := range messages {
		who := "You"
		if msg.IsBot {
			who = "Café assistant"
		}
		sb.WriteString(fmt.Sprintf("*%s* %s\n", escapeMarkdown(who), escapeMarkdown(msg.CreatedAt.Format("15:04"))))
		sb.WriteString(escapeMarkdown(msg.Text) + "\n\n")
	}
	sb.WriteString(escapeMarkdown("Try: " + strings.Join(classifier.QuickActions, " / ")))
	return sb.String()
}
