package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

const (
	// TimeLayout is used for every timestamp shown to the operator.
	TimeLayout = "2006-01-02 15:04:05"

	PreviewBodyLimit = 3600
	truncatedMarker  = "\n…(truncated)"
	truncatedCut     = 20

	unsetUser  = "(unset user)"
	unsetGroup = "(unset group)"

	MaxNagsText = "⛔ Max nags reached."
)

// FormatTime renders t in local time, or "now" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "now"
	}

	return t.Local().Format(TimeLayout)
}

// BuildMessageLink returns the private-channel permalink of a message or ""
// when either id is unknown.
func BuildMessageLink(peerID, messageID int64) string {
	if peerID == 0 || messageID == 0 {
		return ""
	}

	s := strconv.FormatInt(peerID, 10)

	c, ok := strings.CutPrefix(s, "-100")
	if !ok {
		if peerID < 0 {
			peerID = -peerID
		}

		c = strconv.FormatInt(peerID, 10)
	}

	return fmt.Sprintf("https://t.me/c/%s/%d", c, messageID)
}

// SafeSlice bounds text to limit runes, replacing the tail with a marker.
func SafeSlice(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit-truncatedCut]) + truncatedMarker
}

// RenderNag fills the {who} and {where} placeholders of the nag template.
func RenderNag(template, who, where string) string {
	return strings.NewReplacer("{who}", who, "{where}", where).Replace(template)
}

// Who names the watched user for nag texts. fallback is the configured
// username used when the record only has an id.
func Who(s models.Settings, fallback string) string {
	if s.Target == nil {
		return unsetUser
	}

	return "@" + userHandle(s, fallback)
}

// Where names the watched group for nag texts.
func Where(s models.Settings) string {
	if title := s.GroupTitle(); title != "" {
		return title
	}

	return unsetGroup
}

func userHandle(s models.Settings, fallback string) string {
	if name := s.TargetUsername(); name != "" {
		return name
	}

	return fallback
}

// RenderPreview builds the forwarded-message preview for a triggering event.
// when is the resolved event time, shared with the trigger line.
func RenderPreview(event *models.PlatformEvent, user, group string, when time.Time) string {

	body := event.Text
	if body == "" {
		body = "(no text)"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "📨 Forwarded message\nFrom @%s in %s\n🕒 %s\n\n", user, group, FormatTime(when))
	b.WriteString(SafeSlice(body, PreviewBodyLimit))

	if event.HasMedia {
		b.WriteString("\n📎 (media present but not forwarded)")
	}

	if link := BuildMessageLink(event.ChatID, event.MessageID); link != "" {
		b.WriteString("\n🔗 Open: " + link)
	}

	return b.String()
}

func RenderTrigger(user, group string, when time.Time) string {
	return fmt.Sprintf("🚨 Trigger: @%s posted in %s at %s. I'll keep pinging you until you /stop.",
		user, group, FormatTime(when))
}

func TriggerReason(user, group string, when time.Time) string {
	return fmt.Sprintf("Message from @%s in %s at %s", user, group, FormatTime(when))
}
