package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/tartampluch/go-garden/internal/config"
	"github.com/tartampluch/go-garden/internal/engine"
	"github.com/tartampluch/go-garden/internal/health"
)

// Localizer translates table headers and the garden summary.
type Localizer interface {
	Msg(key string) string
	Localize(key string, data map[string]interface{}, count interface{}) string
}

// Options selects the output flavor.
type Options struct {
	JSON    bool
	NoColor bool
}

// palette maps presentation tokens to terminal colors.
var palette = map[string]color.Attribute{
	config.ColorBlooming:  color.FgHiGreen,
	config.ColorNourished: color.FgGreen,
	config.ColorThirsty:   color.FgYellow,
	config.ColorFading:    color.FgHiRed,
	// ColorNurtured and ColorDrifting share values with ColorNourished and
	// ColorThirsty above, so they are covered by those entries.
	config.ColorNeglected: color.FgRed,
	config.ColorNew:       color.FgBlue,
	config.ColorMilestone: color.FgMagenta,
}

// Render writes rep to w as an aligned table followed by the garden summary,
// or as indented JSON.
func Render(w io.Writer, rep engine.Report, loc Localizer, opts Options) error {
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("%s: %w", config.ErrReportEncode, err)
		}
		return nil
	}

	paint := func(token, text string) string {
		attr, ok := palette[token]
		if !ok {
			return text
		}
		c := color.New(attr)
		if opts.NoColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c.Sprint(text)
	}

	headers := []string{
		msg(loc, config.TKeyColName, config.FallbackColumnName),
		msg(loc, config.TKeyColStatus, config.FallbackColumnStatus),
		msg(loc, config.TKeyColDays, config.FallbackColumnDays),
		msg(loc, config.TKeyColStanding, config.FallbackColumnStanding),
		msg(loc, config.TKeyColDue, config.FallbackColumnDue),
	}

	rows := make([][]string, 0, len(rep.Entries))
	for _, a := range rep.Entries {
		rows = append(rows, []string{
			a.Contact.Name,
			string(a.Frequency.Status),
			daysCell(a.Frequency.DaysSince),
			a.Standing.Label,
			a.DueDate.Format(config.DateFormatDisplay),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeRow(&b, headers, widths, nil)
	for i, row := range rows {
		a := rep.Entries[i]
		writeRow(&b, row, widths, func(col int, padded string) string {
			switch col {
			case 1:
				return paint(a.Frequency.Color, padded)
			case 3:
				return paint(a.Standing.Color, padded)
			}
			return padded
		})
	}
	b.WriteString("\n")
	b.WriteString(gardenLine(rep.Garden, loc))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeRow pads every cell before styling so escape codes never break alignment.
func writeRow(b *strings.Builder, cells []string, widths []int, style func(col int, padded string) string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		padded := cell
		if i < len(cells)-1 {
			padded = fmt.Sprintf("%-*s", widths[i], cell)
		}
		if style != nil {
			padded = style(i, padded)
		}
		b.WriteString(padded)
	}
	b.WriteString("\n")
}

func daysCell(days int) string {
	if days == config.NeverContactedDays {
		return config.ReportNeverContactedDisplay
	}
	return strconv.Itoa(days)
}

func gardenLine(g health.Garden, loc Localizer) string {
	blooming := g.ByStatus[health.StatusBlooming]
	nourished := g.ByStatus[health.StatusNourished]
	thirsty := g.ByStatus[health.StatusThirsty]
	fading := g.ByStatus[health.StatusFading]

	if loc == nil {
		return fmt.Sprintf(config.FallbackGardenSummary, g.Total, blooming, nourished, thirsty, fading)
	}
	return loc.Localize(config.TKeyGarden, map[string]interface{}{
		config.TemplateKeyTotal:     g.Total,
		config.TemplateKeyBlooming:  blooming,
		config.TemplateKeyNourished: nourished,
		config.TemplateKeyThirsty:   thirsty,
		config.TemplateKeyFading:    fading,
	}, nil)
}

func msg(loc Localizer, key, fallback string) string {
	if loc == nil {
		return fallback
	}
	return loc.Msg(key)
}
