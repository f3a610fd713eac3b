// Package render produces chart artifacts for analysis results. Charts are
// emitted as self-contained SVG documents so they stay JSON-safe and need no
// rasterization step. Renderers never fail on empty input: they return an
// explicit "no data" placeholder instead.
package render

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Artifact is an opaque rendered image. Callers must not treat it as a
// structured report; it is a blob with a name and a MIME type.
type Artifact struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// SVG returns the artifact content as a string.
func (a *Artifact) SVG() string { return string(a.Data) }

// GraphData describes a dependency graph: node names and directed edges.
type GraphData struct {
	Nodes []string
	Edges [][2]string
}

// HeatmapEntry is one file's aggregate complexity score.
type HeatmapEntry struct {
	File  string
	Score float64
}

// TimelinePoint is an error/warning count for one time bucket.
type TimelinePoint struct {
	Bucket   string
	Errors   int
	Warnings int
}

const (
	width      = 800
	background = "#1a1a1a"
	accent     = "#4ecdc4"
	alert      = "#ff6b6b"
	caution    = "#f7b731"
	textColor  = "#e0e0e0"
)

func newArtifact(name string, body string, height int) *Artifact {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, width, height, background)
	b.WriteString(body)
	b.WriteString(`</svg>`)
	return &Artifact{Name: name, MIME: "image/svg+xml", Data: []byte(b.String())}
}

func placeholder(name, message string) *Artifact {
	body := fmt.Sprintf(
		`<text x="%d" y="150" fill="%s" font-family="monospace" font-size="16" text-anchor="middle">%s</text>`,
		width/2, textColor, escape(message))
	return newArtifact(name, body, 300)
}

// Placeholder returns a labeled placeholder artifact. Used when a renderer
// upstream failed and the handler still needs a chart slot filled.
func Placeholder(name, message string) *Artifact {
	return placeholder(name, message)
}

// DependencyGraph renders a module dependency graph with nodes on a circle.
func DependencyGraph(data GraphData) *Artifact {
	if len(data.Nodes) == 0 {
		return placeholder("dependency_graph", "No modules found - nothing to graph")
	}

	const height = 600
	cx, cy := float64(width)/2, float64(height)/2
	radius := math.Min(cx, cy) - 80

	// Cap node count to keep the layout legible.
	nodes := data.Nodes
	if len(nodes) > 40 {
		nodes = nodes[:40]
	}

	pos := make(map[string][2]float64, len(nodes))
	for i, n := range nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(nodes))
		pos[n] = [2]float64{cx + radius*math.Cos(angle), cy + radius*math.Sin(angle)}
	}

	var b strings.Builder
	for _, e := range data.Edges {
		from, okF := pos[e[0]]
		to, okT := pos[e[1]]
		if !okF || !okT {
			continue
		}
		fmt.Fprintf(&b,
			`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1" opacity="0.5"/>`,
			from[0], from[1], to[0], to[1], accent)
	}
	for _, n := range nodes {
		p := pos[n]
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="6" fill="%s"/>`, p[0], p[1], accent)
		fmt.Fprintf(&b,
			`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="10">%s</text>`,
			p[0]+8, p[1]+3, textColor, escape(shorten(n, 28)))
	}

	return newArtifact("dependency_graph", b.String(), height)
}

// ComplexityHeatmap renders a horizontal bar chart of per-file complexity,
// most complex first.
func ComplexityHeatmap(entries []HeatmapEntry) *Artifact {
	if len(entries) == 0 {
		return placeholder("complexity_heatmap", "No complexity data collected")
	}

	sorted := make([]HeatmapEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if len(sorted) > 25 {
		sorted = sorted[:25]
	}

	maxScore := sorted[0].Score
	if maxScore <= 0 {
		maxScore = 1
	}

	const rowH = 22
	height := 40 + rowH*len(sorted)

	var b strings.Builder
	fmt.Fprintf(&b,
		`<text x="20" y="24" fill="%s" font-family="monospace" font-size="14">Complexity hotspots</text>`,
		textColor)
	for i, e := range sorted {
		y := 40 + i*rowH
		barW := (e.Score / maxScore) * 480
		color := accent
		switch {
		case e.Score > 10:
			color = alert
		case e.Score > 5:
			color = caution
		}
		fmt.Fprintf(&b, `<rect x="280" y="%d" width="%.1f" height="%d" fill="%s"/>`,
			y, barW, rowH-6, color)
		fmt.Fprintf(&b,
			`<text x="20" y="%d" fill="%s" font-family="monospace" font-size="11">%s</text>`,
			y+12, textColor, escape(shorten(e.File, 38)))
		fmt.Fprintf(&b,
			`<text x="%.1f" y="%d" fill="%s" font-family="monospace" font-size="11">%.1f</text>`,
			285+barW, y+12, textColor, e.Score)
	}

	return newArtifact("complexity_heatmap", b.String(), height)
}

// ErrorTimeline renders error/warning counts per time bucket as paired bars.
func ErrorTimeline(points []TimelinePoint) *Artifact {
	if len(points) == 0 {
		return placeholder("error_timeline", "No errors found in analyzed logs")
	}

	sorted := make([]TimelinePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Bucket < sorted[j].Bucket })
	if len(sorted) > 48 {
		sorted = sorted[len(sorted)-48:]
	}

	maxCount := 1
	for _, p := range sorted {
		if p.Errors > maxCount {
			maxCount = p.Errors
		}
		if p.Warnings > maxCount {
			maxCount = p.Warnings
		}
	}

	const height = 360
	const plotH = 260
	barW := float64(width-80) / float64(len(sorted)) / 2

	var b strings.Builder
	fmt.Fprintf(&b,
		`<text x="20" y="24" fill="%s" font-family="monospace" font-size="14">Error timeline</text>`,
		textColor)
	for i, p := range sorted {
		x := 40 + float64(i)*barW*2
		eh := float64(p.Errors) / float64(maxCount) * plotH
		wh := float64(p.Warnings) / float64(maxCount) * plotH
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			x, 300-eh, barW*0.9, eh, alert)
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			x+barW, 300-wh, barW*0.9, wh, caution)
	}
	first, last := sorted[0].Bucket, sorted[len(sorted)-1].Bucket
	fmt.Fprintf(&b,
		`<text x="40" y="330" fill="%s" font-family="monospace" font-size="10">%s</text>`,
		textColor, escape(first))
	fmt.Fprintf(&b,
		`<text x="%d" y="330" fill="%s" font-family="monospace" font-size="10" text-anchor="end">%s</text>`,
		width-20, textColor, escape(last))

	return newArtifact("error_timeline", b.String(), height)
}

func shorten(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "…" + s[len(s)-max+1:]
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
