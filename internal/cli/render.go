package cli

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/models"
)

// maxAlerts is how many of the most recent alerts a board view shows
const maxAlerts = 5

// Renderer draws board snapshots for the terminal
type Renderer struct {
	styles   *styles.Styles
	markdown *glamour.TermRenderer

	// Descriptions renders card descriptions as markdown under the title
	Descriptions bool
}

// NewRenderer builds a renderer for theme. Plain selects glamour's
// no-tty style so output stays stable when piped.
func NewRenderer(theme config.Theme, plain bool) *Renderer {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(styles.CardWidth - 2)}
	if plain {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	r := &Renderer{styles: styles.New(theme)}
	if md, err := glamour.NewTermRenderer(opts...); err == nil {
		r.markdown = md
	} else {
		log.WithError(err).Debug("markdown renderer unavailable, descriptions render as plain text")
	}
	return r
}

// Board renders the whole board: header, lists side by side, then alerts
func (r *Renderer) Board(b *models.Board) string {
	var sb strings.Builder

	sb.WriteString(r.styles.Board.Render(b.Name))
	sb.WriteString(" ")
	sb.WriteString(r.styles.Meta.Render(fmt.Sprintf("v%d  updated %s", b.Version, b.UpdatedAt.Format("2006-01-02 15:04:05"))))
	sb.WriteString("\n")

	if len(b.Members) > 0 {
		names := make([]string, 0, len(b.Members))
		for _, m := range b.Members {
			names = append(names, m.Name)
		}
		sb.WriteString(r.styles.Subtle.Render("members: "))
		sb.WriteString(r.styles.Value.Render(strings.Join(names, ", ")))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if len(b.Lists) == 0 {
		sb.WriteString(r.styles.Empty.Render("No lists"))
		sb.WriteString("\n")
	} else {
		columns := make([]string, 0, len(b.Lists))
		for _, l := range b.Lists {
			columns = append(columns, r.list(b, l))
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
		sb.WriteString("\n")
	}

	if len(b.Alerts) > 0 {
		sb.WriteString("\n")
		start := max(len(b.Alerts)-maxAlerts, 0)
		for _, a := range b.Alerts[start:] {
			sb.WriteString(r.alert(a))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func (r *Renderer) list(b *models.Board, l *models.List) string {
	content := r.styles.ListHdr.Render(fmt.Sprintf("%s (%d)", l.Name, len(l.Cards)))
	if len(l.Cards) == 0 {
		content += "\n" + r.styles.Empty.Render("No cards")
		return r.styles.List.Render(content)
	}
	for _, c := range l.Cards {
		content += "\n" + r.card(b, c)
	}
	return r.styles.List.Render(content)
}

func (r *Renderer) card(b *models.Board, c *models.Card) string {
	lines := []string{r.styles.Title.Render(c.Title)}

	if len(c.Labels) > 0 {
		chips := make([]string, 0, len(c.Labels))
		for _, l := range c.Labels {
			chips = append(chips, r.styles.Label.Render("#"+l))
		}
		lines = append(lines, strings.Join(chips, " "))
	}

	if assigned := b.AssignedMembers(c); len(assigned) > 0 {
		names := make([]string, 0, len(assigned))
		for _, m := range assigned {
			names = append(names, "@"+m.Name)
		}
		lines = append(lines, r.styles.Value.Render(strings.Join(names, " ")))
	}

	var meta []string
	if len(c.Subtasks) > 0 {
		done := 0
		for _, s := range c.Subtasks {
			if s.Completed {
				done++
			}
		}
		meta = append(meta, fmt.Sprintf("%d/%d done", done, len(c.Subtasks)))
	}
	if len(c.Comments) > 0 {
		meta = append(meta, fmt.Sprintf("%d comments", len(c.Comments)))
	}
	if len(c.Attachments) > 0 {
		meta = append(meta, fmt.Sprintf("%d files", len(c.Attachments)))
	}
	if len(meta) > 0 {
		lines = append(lines, r.styles.Subtle.Render(strings.Join(meta, "  ")))
	}

	if r.Descriptions && c.Description != "" {
		lines = append(lines, r.description(c.Description))
	}

	return r.styles.Card.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) description(text string) string {
	if r.markdown != nil {
		if out, err := r.markdown.Render(text); err == nil {
			return strings.TrimSpace(out)
		}
	}
	return r.styles.Value.Render(text)
}

func (r *Renderer) alert(a *models.Alert) string {
	return r.styles.Alert.Render("! ") +
		r.styles.Subtle.Render(a.Timestamp.Format("15:04")+" ") +
		r.styles.Value.Render(a.AuthorName+": "+a.Message)
}
