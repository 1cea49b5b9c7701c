package fafile

import (
	"math"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

type layoutArea struct {
	minX, minY, maxX, maxY float64
}

// circularLayout places states on the ellipse inscribed in area, start
// state at the top, then clockwise in visit order.
func circularLayout(a *fa.Automaton, area layoutArea) map[string][2]float64 {
	ordered := visitOrder(a)
	positions := make(map[string][2]float64, len(ordered))
	cx, cy := (area.minX+area.maxX)/2, (area.minY+area.maxY)/2
	if len(ordered) == 1 {
		positions[ordered[0]] = [2]float64{cx, cy}
		return positions
	}
	rx, ry := (area.maxX-area.minX)/2*0.8, (area.maxY-area.minY)/2*0.8
	for i, name := range ordered {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(len(ordered))
		positions[name] = [2]float64{cx + rx*math.Cos(angle), cy + ry*math.Sin(angle)}
	}
	return positions
}

// visitOrder lists states breadth-first from the start state, followed by
// unreachable states in declaration order.
func visitOrder(a *fa.Automaton) []string {
	seen := map[string]bool{a.Start(): true}
	order := []string{a.Start()}
	symbols := append(a.Alphabet(), fa.Epsilon)
	for i := 0; i < len(order); i++ {
		for _, sym := range symbols {
			for _, t := range a.Outgoing(order[i], sym) {
				for _, to := range t.To {
					if !seen[to] {
						seen[to] = true
						order = append(order, to)
					}
				}
			}
		}
	}
	for _, s := range a.States() {
		if !seen[s] {
			order = append(order, s)
		}
	}
	return order
}
