// Package tui is a terminal stepper for automata: symbols are typed one
// at a time and the active states are highlighted as the input grows.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// MessageType selects how the message line is drawn.
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
)

// view is one of the automata the stepper can switch between.
type view struct {
	label string
	fa    *fa.Automaton
}

// Stepper drives a fa.Runner from keyboard input.
type Stepper struct {
	screen tcell.Screen
	views  []view
	cur    int
	runner *fa.Runner

	// input holds the symbols consumed so far; pending holds typed runes
	// that do not yet form a symbol.
	input   []string
	pending string

	message           string
	messageType       MessageType
	messageFlashStart int64
}

// New creates a stepper for a. Besides a itself, the stepper offers the
// subset DFA and the minimal DFA, switched with Tab.
func New(screen tcell.Screen, a *fa.Automaton) *Stepper {
	dfa := fa.ToDFA(a)
	views := []view{{label: "original", fa: a}, {label: "dfa", fa: dfa}}
	// A subset DFA always minimizes.
	if minimal, err := fa.Minimize(dfa); err == nil {
		views = append(views, view{label: "minimal", fa: minimal})
	}
	s := &Stepper{
		screen: screen,
		views:  views,
		runner: fa.NewRunner(a),
	}
	s.showMessage("type symbols to step", MsgInfo)
	return s
}

// Runner returns the runner of the current view.
func (s *Stepper) Runner() *fa.Runner {
	return s.runner
}

// View returns the label of the current view.
func (s *Stepper) View() string {
	return s.views[s.cur].label
}

// Input returns the symbols consumed so far.
func (s *Stepper) Input() []string {
	return s.input
}

// Message returns the current message line.
func (s *Stepper) Message() string {
	return s.message
}

// Run draws and handles events until Esc or Ctrl-C. The screen must be
// initialized; Run does not finalize it.
func (s *Stepper) Run() {
	for {
		s.draw()
		s.screen.Show()

		switch ev := s.screen.PollEvent().(type) {
		case nil:
			// screen finalized
			return
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventKey:
			if s.HandleKey(ev) {
				return
			}
		}
	}
}

// HandleKey applies one key press and reports whether the stepper should
// quit.
func (s *Stepper) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.reset()
	case tcell.KeyTab:
		s.cycleView()
	case tcell.KeyEnter:
		if s.pending != "" {
			sym := s.pending
			s.pending = ""
			s.step(sym)
		}
	case tcell.KeyRune:
		s.typeRune(ev.Rune())
	}
	return false
}

func (s *Stepper) reset() {
	s.runner.Reset()
	s.input = nil
	s.pending = ""
	s.showMessage("reset", MsgInfo)
}

// cycleView switches to the next view and replays the input on it.
func (s *Stepper) cycleView() {
	s.cur = (s.cur + 1) % len(s.views)
	s.runner = fa.NewRunner(s.views[s.cur].fa)
	s.pending = ""
	if err := s.runner.Run(s.input); err != nil {
		s.input = nil
		s.runner.Reset()
		s.showMessage(fmt.Sprintf("%s view: %v; input cleared", s.View(), err), MsgError)
		return
	}
	s.showMessage(s.View()+" view", MsgInfo)
}

// typeRune extends the pending symbol. The symbol is consumed as soon as
// it matches the alphabet and no longer symbol starts with it; Enter
// forces a match.
func (s *Stepper) typeRune(r rune) {
	s.pending += string(r)
	a := s.runner.Automaton()

	prefixOfLonger := false
	for _, sym := range a.Alphabet() {
		if sym != s.pending && strings.HasPrefix(sym, s.pending) {
			prefixOfLonger = true
			break
		}
	}
	switch {
	case a.HasSymbol(s.pending) && !prefixOfLonger:
		sym := s.pending
		s.pending = ""
		s.step(sym)
	case !prefixOfLonger:
		s.showMessage(fmt.Sprintf("unknown symbol %q", s.pending), MsgError)
		s.pending = ""
	}
}

func (s *Stepper) step(sym string) {
	if err := s.runner.Step(sym); err != nil {
		var unknown *fa.UnknownSymbolError
		if errors.As(err, &unknown) {
			s.showMessage(fmt.Sprintf("unknown symbol %q", sym), MsgError)
			return
		}
		s.showMessage(err.Error(), MsgError)
		return
	}
	s.input = append(s.input, sym)
	if s.runner.IsAccepting() {
		s.showMessage("accepted", MsgSuccess)
	} else {
		s.showMessage("rejected", MsgInfo)
	}
}

func (s *Stepper) showMessage(msg string, msgType MessageType) {
	s.message = msg
	s.messageType = msgType
	s.messageFlashStart = time.Now().UnixMilli()
}
