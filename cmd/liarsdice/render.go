package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"liarsdice-client/internal/client"
	"liarsdice-client/internal/dice"
)

var (
	clrBorder = lipgloss.Color("#30363d")
	clrSubtle = lipgloss.Color("#8b949e")
	clrGold   = lipgloss.Color("#e3b341")
	clrGreen  = lipgloss.Color("#3fb950")
	clrRed    = lipgloss.Color("#f85149")
	clrTitle  = lipgloss.Color("#58a6ff")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func box(content string, borderClr lipgloss.Color) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderClr).
		Padding(0, 1).
		Render(content)
}

// messageTail is how many log lines the view keeps on screen.
const messageTail = 6

func render(v client.View) string {
	var b strings.Builder

	b.WriteString(renderHeader(v))
	b.WriteString("\n")

	if v.State != nil {
		b.WriteString(box(renderTable(v), borderFor(v)))
		b.WriteString("\n")
		if !v.Terminal {
			b.WriteString(renderControls(v))
			b.WriteString("\n")
		}
	} else if v.Status == client.StatusConnected {
		b.WriteString(fg(clrSubtle).Render("Waiting for the game to start..."))
		b.WriteString("\n")
	}

	if v.Terminal {
		b.WriteString(bold(clrGold).Render(fmt.Sprintf("Game over. Winner: %s", v.Winner)))
		b.WriteString("\n")
		b.WriteString(fg(clrSubtle).Render("Type 'again' to play another round or 'quit' to leave."))
		b.WriteString("\n")
	}

	if chat := renderMessages(v); chat != "" {
		b.WriteString(chat)
		b.WriteString("\n")
	}

	if v.LastError != "" {
		b.WriteString(fg(clrRed).Render(v.LastError))
		b.WriteString("\n")
	}
	return b.String()
}

func renderHeader(v client.View) string {
	status := string(v.Status)
	clr := clrSubtle
	switch {
	case v.Terminal:
		clr = clrGold
	case v.Connected:
		clr = clrGreen
	case v.Status == client.StatusDisconnected:
		clr = clrRed
	}
	return bold(clrTitle).Render("Liar's Dice") + "  " +
		fg(clrSubtle).Render("room "+v.RoomKey) + "  " +
		fg(clr).Render("● "+status)
}

func borderFor(v client.View) lipgloss.Color {
	if v.MyTurn && !v.Terminal {
		return clrGold
	}
	return clrBorder
}

func renderTable(v client.View) string {
	st := v.State
	var rows []string

	for _, slot := range st.Slots() {
		name := st.NameOf(slot)
		line := fmt.Sprintf("%-14s dice %d  score %d", name, st.DiceCountByPlayer[slot], st.ScoresBySlot[slot])
		if slot == st.CurrentPlayerSlot && !v.Terminal {
			line = bold(clrGold).Render("▶ " + line)
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}

	var mine []string
	for _, faces := range st.DiceFacesByPlayer {
		for _, f := range faces {
			mine = append(mine, f.String())
		}
	}
	if len(mine) > 0 {
		rows = append(rows, "", "Your dice: "+strings.Join(mine, " "))
	}

	if prev := st.PreviousBid(); prev != nil {
		rows = append(rows, "Current bid: "+prev.String())
	} else {
		rows = append(rows, fg(clrSubtle).Render("No bid yet"))
	}
	return strings.Join(rows, "\n")
}

func renderControls(v client.View) string {
	if !v.MyTurn {
		return fg(clrSubtle).Render("Opponent's turn.")
	}

	var qs []string
	for q := 1; q <= dice.MaxQuantity; q++ {
		s := fmt.Sprintf("%d", q)
		if v.Quantities[q] {
			qs = append(qs, s)
		} else {
			qs = append(qs, fg(clrBorder).Render(s))
		}
	}

	hint := "bid <quantity> <face>"
	if v.Controls.CanChallenge {
		hint += " | challenge"
	}
	return "Quantity: " + strings.Join(qs, " ") + "\n" + fg(clrSubtle).Render(hint)
}

func renderMessages(v client.View) string {
	msgs := v.Messages
	if len(msgs) > messageTail {
		msgs = msgs[len(msgs)-messageTail:]
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		name := v.Name(m.ParticipantID)
		switch m.Kind {
		case client.MessageJoin:
			lines = append(lines, fg(clrSubtle).Render(name+" joined"))
		case client.MessageChat:
			lines = append(lines, bold(clrTitle).Render(name+":")+" "+m.Text)
		}
	}
	return strings.Join(lines, "\n")
}
