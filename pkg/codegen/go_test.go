package codegen

import (
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// acceptor is the machine read back from generated source.
type acceptor struct {
	states  []string
	symbols []string
	next    map[int]map[int]int
	final   map[int]bool
}

// loadAcceptor type-checks src and extracts its name tables, the Step
// transition table and the accepting states.
func loadAcceptor(t *testing.T, src string) acceptor {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "acceptor.go", src, parser.AllErrors)
	require.NoError(t, err, src)

	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	_, err = (&types.Config{}).Check(f.Name.Name, fset, []*ast.File{f}, info)
	require.NoError(t, err, src)

	constInt := func(e ast.Expr) int {
		tv, ok := info.Types[e]
		require.True(t, ok && tv.Value != nil, "not a constant: %#v", e)
		v, exact := constant.Int64Val(tv.Value)
		require.True(t, exact)
		return int(v)
	}

	acc := acceptor{next: make(map[int]map[int]int), final: make(map[int]bool)}
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.VAR {
				continue
			}
			spec := d.Specs[0].(*ast.ValueSpec)
			var names []string
			for _, elt := range spec.Values[0].(*ast.CompositeLit).Elts {
				s, err := strconv.Unquote(elt.(*ast.BasicLit).Value)
				require.NoError(t, err)
				names = append(names, s)
			}
			switch name := spec.Names[0].Name; {
			case strings.HasSuffix(name, "StateNames"):
				acc.states = names
			case strings.HasSuffix(name, "SymbolNames"):
				acc.symbols = names
			}

		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Body.List) == 0 {
				continue
			}
			sw, ok := d.Body.List[0].(*ast.SwitchStmt)
			if !ok {
				continue
			}
			switch d.Name.Name {
			case "Step":
				for _, stmt := range sw.Body.List {
					cc := stmt.(*ast.CaseClause)
					from := constInt(cc.List[0])
					acc.next[from] = make(map[int]int)
					inner := cc.Body[0].(*ast.SwitchStmt)
					for _, istmt := range inner.Body.List {
						ic := istmt.(*ast.CaseClause)
						assign := ic.Body[0].(*ast.AssignStmt)
						acc.next[from][constInt(ic.List[0])] = constInt(assign.Rhs[0])
					}
				}
			case "IsAccepting":
				for _, e := range sw.Body.List[0].(*ast.CaseClause).List {
					acc.final[constInt(e)] = true
				}
			}
		}
	}
	return acc
}

func (acc acceptor) accepts(word []string) bool {
	state := 0
	for _, name := range word {
		sym := -1
		for i, s := range acc.symbols {
			if s == name {
				sym = i
			}
		}
		to, ok := acc.next[state][sym]
		if !ok {
			return false
		}
		state = to
	}
	return acc.final[state]
}

// assertMatchesMinimalDFA checks the generated table against the minimal
// DFA of a, move by move and on every word up to length 6.
func assertMatchesMinimalDFA(t *testing.T, a *fa.Automaton, acc acceptor) {
	t.Helper()
	m, err := fa.Minimize(fa.ToDFA(a))
	require.NoError(t, err)

	require.Equal(t, m.States(), acc.states)
	require.Equal(t, m.Alphabet(), acc.symbols)
	index := make(map[string]int)
	for i, s := range acc.states {
		index[s] = i
	}
	for i, s := range acc.states {
		assert.Equal(t, m.IsFinal(s), acc.final[i], "final %s", s)
		for j, sym := range acc.symbols {
			to, ok := acc.next[i][j]
			want := m.Next(s, sym)
			if len(want) == 0 {
				assert.False(t, ok, "%s on %s", s, sym)
				continue
			}
			require.Len(t, want, 1)
			assert.True(t, ok, "%s on %s", s, sym)
			assert.Equal(t, index[want[0]], to, "%s on %s", s, sym)
		}
	}

	words := [][]string{{}, {"z"}, {"a", "z"}}
	frontier := [][]string{{}}
	for n := 0; n < 6; n++ {
		var grown [][]string
		for _, w := range frontier {
			for _, sym := range a.Alphabet() {
				grown = append(grown, append(append([]string{}, w...), sym))
			}
		}
		words = append(words, grown...)
		frontier = grown
	}
	for _, w := range words {
		assert.Equal(t, fa.Accepts(a, w), acc.accepts(w), "%v", w)
	}
}

func TestGenerateGo(t *testing.T) {
	d := fa.New(fa.KindNFA)
	d.Name = "ends-in-ab"
	d.States = []string{"q0", "q1", "q2"}
	d.Alphabet = []string{"a", "b"}
	d.Start = "q0"
	d.Final = []string{"q2"}
	d.AddTransition("q0", "a", "q0", "q1")
	d.AddTransition("q0", "b", "q0")
	d.AddTransition("q1", "b", "q2")
	a, err := d.Build()
	require.NoError(t, err)

	src, err := GenerateGo(a, "acceptor")
	require.NoError(t, err)

	acc := loadAcceptor(t, src)
	assertMatchesMinimalDFA(t, a, acc)

	assert.Contains(t, src, "package acceptor")
	assert.Contains(t, src, "type EndsInAbState uint16")
	assert.Contains(t, src, "EndsInAbStateQ0 EndsInAbState = iota")
	assert.Contains(t, src, "func NewEndsInAb() *EndsInAb")
	assert.Contains(t, src, "var endsInAbStateNames")
}

func TestGenerateGoPartialDFA(t *testing.T) {
	d := fa.New(fa.KindDFA)
	d.Name = "7up"
	d.States = []string{"s", "t"}
	d.Alphabet = []string{"0", "1"}
	d.Start = "s"
	d.Final = []string{"t"}
	d.AddTransition("s", "1", "t")
	d.AddTransition("t", "0", "s")
	a, err := d.Build()
	require.NoError(t, err)

	src, err := GenerateGo(a, "")
	require.NoError(t, err)

	acc := loadAcceptor(t, src)
	assertMatchesMinimalDFA(t, a, acc)
	assert.Contains(t, acc.states, fa.TrapState)

	assert.Contains(t, src, "package fa")
	assert.Contains(t, src, "AcceptorSymbol0 AcceptorSymbol = iota")
	assert.Contains(t, src, "AcceptorStateTrap")
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, []string{"Q0", "Q0Q1", "Dead", "3"}, identifiers([]string{"q0", "{q0,q1}", "dead", "{}"}))
	assert.Equal(t, []string{"GoHome", "1"}, identifiers([]string{"go-home", "go home"}))
}
