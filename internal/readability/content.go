package readability

import (
	"math"
	"sort"

	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/types"
)

// Candidate is a scored content container.
type Candidate struct {
	Node  dom.NodeID
	Depth int
	Score float64
}

// SelectContent returns the best content root below root.
func (r *Readability) SelectContent(root *html.Node) (*html.Node, error) {
	cands := r.Candidates(root)
	if len(cands) == 0 {
		return nil, types.WrapExtractionError(types.ErrNoContent, "SelectContent", "no candidate container")
	}

	chain := r.BuildChain(cands)
	target := FindTarget(chain, r.lex.Thresholds.MinScoreGap)

	r.log.Debug().
		Int("candidates", len(cands)).
		Int("chain", len(chain)).
		Int("depth", target.Depth).
		Float64("score", target.Score).
		Str("tag", dom.TagName(r.doc.Node(target.Node))).
		Msg("content selected")

	return r.doc.Node(target.Node), nil
}

// Candidates scans root for container elements that clear the depth and
// text length bars, in document order.
func (r *Readability) Candidates(root *html.Node) []Candidate {
	t := r.lex.Thresholds
	tags := append([]string(nil), r.lex.ContainerTags...)
	if body := r.doc.Body(); body != nil && len(dom.ChildElements(body, "p")) > t.MinBodyParagraphs {
		tags = append(tags, "body")
	}

	var cands []Candidate
	for _, n := range dom.Elements(root) {
		if !dom.IsElement(n, tags...) {
			continue
		}
		depth := dom.Depth(n)
		if depth > t.MaxDepth {
			continue
		}
		if dom.PureLen(n) < t.MinContentLength {
			continue
		}
		// a cell opening with a table is layout
		if dom.IsElement(n, "td") && dom.IsElement(dom.FirstContentChild(n), "table") {
			continue
		}
		cands = append(cands, Candidate{
			Node:  r.doc.ID(n),
			Depth: depth,
			Score: r.Score(n, depth),
		})
	}
	return cands
}

// Score rates a container: its depth, nudged by the lexicon and paragraph
// children, times its non-link text in paragraph units.
func (r *Readability) Score(n *html.Node, depth int) float64 {
	mul := float64(depth)
	idents := dom.Identities(n, r.lex.GridTokens)
	if dom.MatchSymbols(idents, r.lex.Positive) {
		mul += 0.6
	}
	if dom.MatchSymbols(idents, r.lex.Negative) {
		mul -= 0.5
	}
	if len(dom.ChildElements(n, "p")) > 0 {
		mul += math.Sqrt(float64(depth)) / 5
	}

	valid := float64(dom.PureLen(n) - dom.LinkPureLen(n))
	if aside := dom.FindFirst(n, "aside"); aside != nil {
		valid -= float64(dom.PureLen(aside)) / 2
	}

	return mul * valid / float64(r.lex.Thresholds.MinParagraphLength)
}

// BuildChain links the candidates into ancestors of the top scorer, the top
// scorer, and a single non-branching run of its descendants.
func (r *Readability) BuildChain(cands []Candidate) []Candidate {
	if len(cands) == 0 {
		return nil
	}

	top := cands[0]
	for _, c := range cands[1:] {
		if c.Score > top.Score {
			top = c
		}
	}

	minPoint := top.Score / 4
	if top.Score > 0 {
		minPoint = math.Max(math.Sqrt(top.Score), minPoint)
	}

	sorted := append([]Candidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Depth < sorted[j].Depth })

	hops := r.lex.Thresholds.MaxAncestorHops
	var ancestors, children []Candidate
	for _, c := range sorted {
		if c.Score < minPoint {
			continue
		}
		switch {
		case r.doc.IsAncestor(c.Node, top.Node, hops):
			ancestors = append(ancestors, c)
		case r.doc.IsAncestor(top.Node, c.Node, hops):
			if len(children) == 0 {
				children = append(children, c)
				continue
			}
			latest := children[len(children)-1]
			if latest.Depth == c.Depth {
				if latest.Score > c.Score {
					continue
				}
				children[len(children)-1] = c
			} else if r.doc.IsAncestor(latest.Node, c.Node, hops) {
				children = append(children, c)
			}
		}
	}

	chain := append(ancestors, top)
	return append(chain, children...)
}

// FindTarget picks the content root from a chain: the shallow side of the
// widest score gap of at least minGap, unless the depth still to descend
// outweighs that gap, in which case the deepest element wins.
func FindTarget(chain []Candidate, minGap float64) Candidate {
	last := chain[len(chain)-1]
	if len(chain) == 1 {
		return last
	}

	found := false
	var current Candidate
	var widest float64
	for i := 0; i < len(chain)-1; i++ {
		diff := chain[i].Score - chain[i+1].Score
		if diff < minGap {
			continue
		}
		if !found || diff > widest {
			found = true
			widest = diff
			current = chain[i]
		}
	}
	if !found {
		return last
	}

	// A deeper candidate must outscore the shallower one by the squared depth
	// gap. The threshold is empirical.
	depthGap := float64(last.Depth - current.Depth)
	if current.Score-last.Score < depthGap*depthGap {
		return last
	}
	return current
}
