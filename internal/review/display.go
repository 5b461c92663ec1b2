package review

import (
	"fmt"
	"strings"

	"github.com/phrazzld/scry-review/internal/domain"
)

// DueToday is shown for a card without a due date.
const DueToday = "Review Today"

// Progress describes where the session is and the current card's schedule.
type Progress struct {
	// Index is 1-based.
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	Interval   int    `json:"interval"`
	Counter    int    `json:"counter"`
	Threshold  int    `json:"threshold"`
	DueDisplay string `json:"due_display"`
}

// Display is everything a renderer needs to draw the session.
type Display struct {
	Phase       Phase       `json:"phase"`
	Code        string      `json:"code,omitempty"`
	FrontText   string      `json:"front_text"`
	BackText    string      `json:"back_text"`
	VisibleSide domain.Side `json:"visible_side"`
	Paused      bool        `json:"paused"`
	AutoSeconds int         `json:"auto_seconds"`
	Progress    Progress    `json:"progress"`
}

// VisibleText returns the text on the face currently shown.
func (d Display) VisibleText() string {
	if d.VisibleSide == domain.SideBack {
		return d.BackText
	}
	return d.FrontText
}

// StatusLine renders the progress the way the review screen prints it, e.g.
// "Card 2/10 | Interval: 3 days | Successes Remaining: 4/5 | Next Due: 2026-10-22".
func (d Display) StatusLine() string {
	if d.Progress.Total == 0 {
		return ""
	}
	p := d.Progress
	return strings.Join([]string{
		fmt.Sprintf("Card %d/%d", p.Index, p.Total),
		fmt.Sprintf("Interval: %d days", p.Interval),
		fmt.Sprintf("Successes Remaining: %d/%d", p.Counter, p.Threshold),
		p.DueDisplay,
	}, " | ")
}

// NewDisplay renders st. threshold is shown alongside the counter.
func NewDisplay(st State, threshold int) Display {
	d := Display{
		Phase:       st.Phase(),
		VisibleSide: st.Side,
		Paused:      st.Paused,
		AutoSeconds: st.AutoSeconds,
	}

	card, ok := st.Current()
	if !ok || st.Closed {
		return d
	}

	d.Code = card.Code
	d.FrontText = card.Front
	d.BackText = card.Back
	d.Progress = Progress{
		Index:      st.Position + 1,
		Total:      len(st.Cards),
		Interval:   card.Interval,
		Counter:    card.Counter,
		Threshold:  threshold,
		DueDisplay: dueDisplay(card),
	}
	return d
}

func dueDisplay(card domain.Card) string {
	if card.DueAt == nil {
		return DueToday
	}
	return "Next Due: " + card.DueAt.Format("2006-01-02")
}
