package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleTitle      = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	styleState      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStateSel   = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleTrans      = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleSidebarH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorLime).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const helpText = "symbols: step  Enter: submit  Tab: view  Backspace: reset  Esc: quit"

func (s *Stepper) draw() {
	s.screen.Clear()
	w, h := s.screen.Size()
	if w < 20 || h < 8 {
		s.drawString(0, 0, "terminal too small", styleDefault)
		return
	}

	a := s.runner.Automaton()
	title := fmt.Sprintf("fa: %s [%s, %s]", a.Name(), s.View(), a.Kind())
	s.drawString(1, 0, title, styleTitle)

	bodyH := h - 4
	left := w / 3
	s.drawStates(0, 1, left, bodyH)
	s.drawTransitions(left, 1, w-left, bodyH/2)
	s.drawHistory(left, 1+bodyH/2, w-left, bodyH-bodyH/2)

	s.drawStatusBar(w, h)
	s.drawString(0, h-1, helpText, styleHelp)
}

func (s *Stepper) drawStates(x, y, w, h int) {
	s.drawTitledBox(x, y, w, h, "States")
	a := s.runner.Automaton()
	active := make(map[string]bool)
	for _, st := range s.runner.CurrentStates() {
		active[st] = true
	}
	for i, st := range a.States() {
		if i >= h-2 {
			break
		}
		label := "  " + st
		if st == a.Start() {
			label = "> " + st
		}
		if a.IsFinal(st) {
			label += " *"
		}
		style := styleState
		if active[st] {
			style = styleStateSel
		}
		s.drawString(x+1, y+1+i, clip(label, w-2), style)
	}
}

func (s *Stepper) drawTransitions(x, y, w, h int) {
	s.drawTitledBox(x, y, w, h, "Transitions")
	for i, t := range s.runner.Automaton().Transitions() {
		if i >= h-2 {
			break
		}
		s.drawString(x+1, y+1+i, clip(t.String(), w-2), styleTrans)
	}
}

func (s *Stepper) drawHistory(x, y, w, h int) {
	s.drawTitledBox(x, y, w, h, "History")
	hist := s.runner.History()
	// newest at the bottom
	if over := len(hist) - (h - 2); over > 0 {
		hist = hist[over:]
	}
	for i, st := range hist {
		line := fmt.Sprintf("%s --%s--> %s", strings.Join(st.From, ","), st.Symbol, strings.Join(st.To, ","))
		s.drawString(x+1, y+1+i, clip(line, w-2), styleDefault)
	}
}

func (s *Stepper) drawStatusBar(w, h int) {
	y := h - 3
	for x := 0; x < w; x++ {
		s.screen.SetContent(x, y, ' ', nil, styleStatus)
		s.screen.SetContent(x, y+1, ' ', nil, styleMsgInfo)
	}
	input := strings.Join(s.input, " ")
	if s.pending != "" {
		input += " [" + s.pending + "]"
	}
	s.drawString(1, y, clip("Input: "+input+"  "+s.runner.Status(), w-2), styleStatus)

	style := styleMsgInfo
	switch s.messageType {
	case MsgError:
		style = styleMsgError
		// Error messages flash twice when shown.
		if elapsed := time.Now().UnixMilli() - s.messageFlashStart; elapsed >= 0 && elapsed < 500 {
			if phase := elapsed / 125; phase == 1 || phase == 3 {
				style = style.Reverse(true)
			}
		}
	case MsgSuccess:
		style = styleMsgSuccess
	}
	s.drawString(1, y+1, clip(s.message, w-2), style)
}

// drawTitledBox draws a bordered box with an optional title.
func (s *Stepper) drawTitledBox(x, y, w, h int, title string) {
	s.screen.SetContent(x, y, '┌', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		s.screen.SetContent(x+i, y, '─', nil, styleBorder)
	}
	s.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)

	if title != "" {
		s.drawString(x+2, y, " "+title+" ", styleSidebarH)
	}

	for row := 1; row < h-1; row++ {
		s.screen.SetContent(x, y+row, '│', nil, styleBorder)
		s.screen.SetContent(x+w-1, y+row, '│', nil, styleBorder)
	}

	s.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		s.screen.SetContent(x+i, y+h-1, '─', nil, styleBorder)
	}
	s.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
}

func (s *Stepper) drawString(x, y int, str string, style tcell.Style) {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
