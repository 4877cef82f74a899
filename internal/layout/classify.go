package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// SizeCluster is a group of near-equal font sizes among the candidates.
type SizeCluster struct {
	Size      float64 // largest size in the cluster
	Min       float64 // smallest size in the cluster
	Rank      int     // 1 = largest
	Count     int
	FirstPage int
	FirstTop  float64
}

// Ranked is a candidate tagged with its cluster rank and heading level.
type Ranked struct {
	doctree.Candidate
	Rank  int
	Level doctree.Level
}

// Classification is the result of ranking candidates by font size.
type Classification struct {
	Clusters []SizeCluster
	Headings []Ranked // reading order
}

// Classify clusters candidate font sizes, ranks the clusters largest first
// and keeps the candidates of the top MaxLevels ranks as headings.
//
// Sizes are merged with a sorted scan: walking sizes in descending order, a
// size joins the current cluster while it is within SizeTolerance of the
// cluster's largest size. The result depends only on the candidate values,
// never on input order.
func Classify(cands []doctree.Candidate, cfg Config) Classification {
	cfg = cfg.withDefaults()
	if len(cands) == 0 {
		return Classification{}
	}

	sorted := slices.Clone(cands)
	slices.SortStableFunc(sorted, func(a, b doctree.Candidate) int {
		if c := cmp.Compare(b.FontSize, a.FontSize); c != 0 {
			return c
		}
		return compareCandidates(a, b)
	})

	var clusters []SizeCluster
	member := make([]int, len(sorted)) // index into clusters
	for i, c := range sorted {
		n := len(clusters)
		if n == 0 || clusters[n-1].Size-c.FontSize >= cfg.SizeTolerance {
			clusters = append(clusters, SizeCluster{
				Size:      c.FontSize,
				Min:       c.FontSize,
				FirstPage: c.Page,
				FirstTop:  c.BBox.Y,
			})
			n++
		}
		cl := &clusters[n-1]
		cl.Min = math.Min(cl.Min, c.FontSize)
		cl.Count++
		if c.Page < cl.FirstPage || (c.Page == cl.FirstPage && c.BBox.Y < cl.FirstTop) {
			cl.FirstPage, cl.FirstTop = c.Page, c.BBox.Y
		}
		member[i] = n - 1
	}

	order := make([]int, len(clusters))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareClusters(clusters[a], clusters[b])
	})
	rank := make([]int, len(clusters))
	for r, idx := range order {
		rank[idx] = r + 1
	}
	out := Classification{Clusters: make([]SizeCluster, len(clusters))}
	for r, idx := range order {
		cl := clusters[idx]
		cl.Rank = r + 1
		out.Clusters[r] = cl
	}

	for i, c := range sorted {
		rk := rank[member[i]]
		if rk > cfg.MaxLevels {
			continue
		}
		out.Headings = append(out.Headings, Ranked{Candidate: c, Rank: rk, Level: doctree.LevelForRank(rk)})
	}
	slices.SortStableFunc(out.Headings, func(a, b Ranked) int {
		return compareCandidates(a.Candidate, b.Candidate)
	})
	out.Headings = preferBold(out.Headings, cfg)
	return out
}

// compareClusters orders clusters by size, then first page of appearance,
// then vertical position.
func compareClusters(a, b SizeCluster) int {
	if c := cmp.Compare(b.Size, a.Size); c != 0 {
		return c
	}
	if c := cmp.Compare(a.FirstPage, b.FirstPage); c != 0 {
		return c
	}
	return cmp.Compare(a.FirstTop, b.FirstTop)
}

func compareCandidates(a, b doctree.Candidate) int {
	if c := compareLines(a.Line, b.Line); c != 0 {
		return c
	}
	return cmp.Compare(a.Text, b.Text)
}

// preferBold resolves same-rank candidates sharing a vertical band on one
// page: when any of them is bold, the non-bold ones are dropped. This is an
// approximation for a heading followed by same-size emphasis on its row.
// headings must be in reading order.
func preferBold(headings []Ranked, cfg Config) []Ranked {
	drop := make([]bool, len(headings))
	for i := range headings {
		for j := i + 1; j < len(headings); j++ {
			a, b := headings[i], headings[j]
			if a.Page != b.Page {
				break
			}
			if !sameBand(a.BBox, b.BBox, cfg) {
				if b.BBox.Y > a.BBox.Bottom() {
					break
				}
				continue
			}
			if a.Rank != b.Rank || a.Bold == b.Bold {
				continue
			}
			if a.Bold {
				drop[j] = true
			} else {
				drop[i] = true
			}
		}
	}
	out := headings[:0:0]
	for i, h := range headings {
		if !drop[i] {
			out = append(out, h)
		}
	}
	return out
}

func sameBand(a, b doctree.BBox, cfg Config) bool {
	return math.Abs(a.CenterY()-b.CenterY()) <= cfg.LineTolerance*min(a.H, b.H)
}
