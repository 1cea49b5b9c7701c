package tui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// endsWithAB accepts words over {a,b} ending in "ab".
func endsWithAB(t *testing.T) *fa.Automaton {
	t.Helper()
	d := fa.New(fa.KindNFA)
	d.Name = "ends-ab"
	d.States = []string{"q0", "q1", "q2"}
	d.Alphabet = []string{"a", "b"}
	d.SetStart("q0")
	d.SetFinal("q2")
	d.AddTransition("q0", "a", "q0", "q1")
	d.AddTransition("q0", "b", "q0")
	d.AddTransition("q1", "b", "q2")
	a, err := d.Build()
	require.NoError(t, err)
	return a
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

// screenText returns the screen contents one line per row.
func screenText(screen tcell.SimulationScreen) string {
	cells, w, h := screen.GetContents()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) == 0 {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteRune(c.Runes[0])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestStepping(t *testing.T) {
	s := New(newScreen(t), endsWithAB(t))

	assert.False(t, s.HandleKey(runeKey('a')))
	assert.Equal(t, []string{"q0", "q1"}, s.Runner().CurrentStates())
	assert.Equal(t, "rejected", s.Message())

	s.HandleKey(runeKey('b'))
	assert.True(t, s.Runner().IsAccepting())
	assert.Equal(t, "accepted", s.Message())
	assert.Equal(t, []string{"a", "b"}, s.Input())
	assert.Len(t, s.Runner().History(), 2)

	s.HandleKey(runeKey('x'))
	assert.Contains(t, s.Message(), "unknown symbol")
	assert.Equal(t, []string{"a", "b"}, s.Input())

	s.HandleKey(key(tcell.KeyBackspace2))
	assert.Empty(t, s.Input())
	assert.Equal(t, []string{"q0"}, s.Runner().CurrentStates())
}

func TestCycleViewReplaysInput(t *testing.T) {
	s := New(newScreen(t), endsWithAB(t))
	s.HandleKey(runeKey('a'))
	s.HandleKey(runeKey('b'))

	s.HandleKey(key(tcell.KeyTab))
	assert.Equal(t, "dfa", s.View())
	assert.Equal(t, []string{"{q0,q2}"}, s.Runner().CurrentStates())
	assert.True(t, s.Runner().IsAccepting())

	s.HandleKey(key(tcell.KeyTab))
	assert.Equal(t, "minimal", s.View())
	assert.True(t, s.Runner().IsAccepting())

	s.HandleKey(key(tcell.KeyTab))
	assert.Equal(t, "original", s.View())
	assert.Equal(t, []string{"q0", "q2"}, s.Runner().CurrentStates())
}

func TestNoTransitionKeepsState(t *testing.T) {
	d := fa.New(fa.KindDFA)
	d.States = []string{"p", "q"}
	d.Alphabet = []string{"a", "b"}
	d.SetStart("p")
	d.SetFinal("q")
	d.AddTransition("p", "a", "q")
	a, err := d.Build()
	require.NoError(t, err)

	s := New(newScreen(t), a)
	s.HandleKey(runeKey('b'))
	assert.ErrorIs(t, s.Runner().Step("b"), fa.ErrNoTransition)
	assert.Contains(t, s.Message(), "no transition")
	assert.Equal(t, []string{"p"}, s.Runner().CurrentStates())
	assert.Empty(t, s.Input())
}

func TestMultiCharacterSymbols(t *testing.T) {
	d := fa.New(fa.KindDFA)
	d.States = []string{"s"}
	d.Alphabet = []string{"go", "g"}
	d.SetStart("s")
	d.SetFinal("s")
	d.AddTransition("s", "go", "s")
	d.AddTransition("s", "g", "s")
	a, err := d.Build()
	require.NoError(t, err)

	s := New(newScreen(t), a)
	s.HandleKey(runeKey('g'))
	assert.Empty(t, s.Input(), "g is a prefix of go and waits")
	s.HandleKey(runeKey('o'))
	assert.Equal(t, []string{"go"}, s.Input())

	s.HandleKey(runeKey('g'))
	s.HandleKey(key(tcell.KeyEnter))
	assert.Equal(t, []string{"go", "g"}, s.Input())
}

func TestDraw(t *testing.T) {
	screen := newScreen(t)
	s := New(screen, endsWithAB(t))
	s.HandleKey(runeKey('a'))
	s.draw()
	screen.Show()

	text := screenText(screen)
	assert.Contains(t, text, "fa: ends-ab [original, nfa]")
	assert.Contains(t, text, "> q0")
	assert.Contains(t, text, "q2 *")
	assert.Contains(t, text, "q0 -a-> {q0,q1}")
	assert.Contains(t, text, "q0 --a--> q0,q1")
	assert.Contains(t, text, "Input: a  State: {q0, q1}")
}

func TestRunQuitsOnEscape(t *testing.T) {
	screen := newScreen(t)
	s := New(screen, endsWithAB(t))

	screen.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'b', tcell.ModNone)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	s.Run()

	assert.Equal(t, []string{"a", "b"}, s.Input())
}
