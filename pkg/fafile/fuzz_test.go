package fafile_test

import (
	"testing"

	"github.com/ha1tch/fa-toolkit/pkg/fafile"
)

// FuzzParseJSON looks for panics in the JSON reader.
// Run with: go test -fuzz=FuzzParseJSON -fuzztime=30s ./pkg/fafile/
func FuzzParseJSON(f *testing.F) {
	f.Add([]byte(nfaJSON))
	f.Add([]byte(`{"kind":"dfa","states":["s0"],"alphabet":["a"],"start":"s0","transitions":[]}`))
	f.Add([]byte(`{"kind":"nfa","states":["s0"],"start":"s0","transitions":[{"from":"s0","symbol":null,"to":[]}]}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(``))

	f.Fuzz(func(t *testing.T, data []byte) {
		a, err := fafile.ParseJSON(data)
		if err != nil {
			return
		}
		out, err := fafile.ToJSON(a, false)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		if _, err := fafile.ParseJSON(out); err != nil {
			t.Fatalf("re-parse: %v\n%s", err, out)
		}
	})
}

// FuzzParseForm looks for panics in the form parser.
func FuzzParseForm(f *testing.F) {
	f.Add("q0,q1", "a", "q0", "q1", "q0,a,{q0,q1};q1,a,q1")
	f.Add("p", "x", "p", "", "p,epsilon,p")
	f.Add(",,", ",", " ", ",", ";;")
	f.Add("a", "b", "a", "a", "a,b,{")

	f.Fuzz(func(t *testing.T, states, alphabet, start, final, transitions string) {
		a, err := fafile.ParseForm(fafile.Form{
			States:      states,
			Alphabet:    alphabet,
			Start:       start,
			Final:       final,
			Transitions: transitions,
		})
		if err == nil {
			_ = fafile.GenerateDOT(a, "")
		}
	})
}
