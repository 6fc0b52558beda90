package cli

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/models"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Accent  lipgloss.Color
	Border  lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Accent:  lipgloss.Color("#FFAF00"), // amber
	Border:  lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func (t Theme) priceStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// plainText strips markup from a rich-text description.
func plainText(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(text), " ")
}

func typeLabel(t models.ListingType) string {
	if t == models.ListingRent {
		return "For Rent"
	}
	return "For Sale"
}

// renderPropertyTable renders listings as a table.
func renderPropertyTable(w io.Writer, props []models.Property) {
	if len(props) == 0 {
		fmt.Fprintln(w, "No properties found matching your criteria.")
		return
	}

	t := defaultTheme
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		featured := ""
		if p.Featured {
			featured = "★"
		}
		rows = append(rows, []string{
			p.ID,
			models.TruncateText(p.Title, 32),
			models.FormatPrice(p.Price, p.Type),
			typeLabel(p.Type),
			fmt.Sprintf("%d bd / %d ba", p.Bedrooms, p.Bathrooms),
			p.Location.City,
			featured,
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Border)).
		Headers("ID", "TITLE", "PRICE", "TYPE", "ROOMS", "CITY", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Bold(true).Foreground(t.Status)
			case col == 2:
				return style.Foreground(t.Accent)
			}
			return style
		})

	fmt.Fprintln(w, tbl.Render())
	fmt.Fprintln(w, t.hintStyle().Render(fmt.Sprintf("%d properties", len(props))))
}

// renderProperty renders the detail view of one listing.
func renderProperty(w io.Writer, p models.Property, now time.Time) {
	t := defaultTheme

	fmt.Fprintln(w, t.titleStyle().Render(p.Title))
	fmt.Fprintf(w, "%s  %s\n", t.priceStyle().Render(models.FormatPrice(p.Price, p.Type)), t.statusStyle().Render(typeLabel(p.Type)))
	fmt.Fprintf(w, "%s, %s, %s %s\n\n", p.Location.Address, p.Location.City, p.Location.State, p.Location.Zip)

	fmt.Fprintf(w, "Bedrooms:   %d\n", p.Bedrooms)
	fmt.Fprintf(w, "Bathrooms:  %d\n", p.Bathrooms)
	fmt.Fprintf(w, "Area:       %d sq ft\n", p.Area)
	fmt.Fprintf(w, "Listed by:  %s (%s)\n", p.OwnerName, models.TimeAgo(p.CreatedAt, now))
	fmt.Fprintf(w, "Map:        %.4f, %.4f\n\n", p.Location.Lat, p.Location.Lng)

	fmt.Fprintln(w, plainText(p.Description))

	if len(p.Images) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.hintStyle().Render("Images:"))
		for _, img := range p.Images {
			fmt.Fprintf(w, "  %s\n", img)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, t.hintStyle().Render(fmt.Sprintf("Contact the owner: estatehub messages send %s \"<text>\"", p.ID)))
}

// renderConversations renders the inbox of a user.
func renderConversations(w io.Writer, convs []models.Conversation, now time.Time) {
	if len(convs) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return
	}

	t := defaultTheme
	fmt.Fprintf(w, "Conversations (%d):\n\n", len(convs))
	for _, c := range convs {
		badge := ""
		if c.UnreadCount > 0 {
			badge = " " + t.errorStyle().Render(fmt.Sprintf("(%d new)", c.UnreadCount))
		}
		fmt.Fprintf(w, "- %s%s\n", t.titleStyle().Render(c.OtherUserName), badge)
		fmt.Fprintf(w, "  %s\n", t.statusStyle().Render(c.PropertyTitle))
		fmt.Fprintf(w, "  %s\n", models.TruncateText(c.LastMessageText, 60))
		fmt.Fprintf(w, "  %s\n", t.hintStyle().Render(fmt.Sprintf("%s · %s", c.ID, models.TimeAgo(c.LastMessageAt, now))))
	}
}

// renderMessages renders a chat from the point of view of viewerID.
func renderMessages(w io.Writer, msgs []models.Message, viewerID string, now time.Time) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages yet. Start the conversation!")
		return
	}

	t := defaultTheme
	mine := lipgloss.NewStyle().Foreground(t.Status).PaddingLeft(8)
	theirs := lipgloss.NewStyle()
	for _, m := range msgs {
		style, who := theirs, m.SenderName
		if m.SenderID == viewerID {
			style, who = mine, "You"
		}
		header := fmt.Sprintf("%s · %s", who, models.TimeAgo(m.Timestamp, now))
		fmt.Fprintln(w, style.Render(t.hintStyle().Render(header)+"\n"+m.Text))
		fmt.Fprintln(w)
	}
}

// printStats prints the operation timing snapshot.
func printStats(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintln(w, "Operation Timings")
	fmt.Fprintln(w, "═══════════════════════════════════════")
	if len(snap.Operations) == 0 {
		fmt.Fprintln(w, "No operations recorded.")
		return
	}
	for _, op := range snap.Operations {
		fmt.Fprintf(w, "%-20s count=%d errors=%d avg=%.1fms min=%dms max=%dms\n",
			op.Name, op.Count, op.Errors, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	}
}
