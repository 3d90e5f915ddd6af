package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/beanload/output"
)

// slowStage marks stages worth highlighting.
const slowStage = 100 * time.Millisecond

// formatTimingTree writes a timer and its children:
//
//	load main.beancount: 12ms
//	├─ analyze: 9ms
//	├─ validate: 1ms
//	│  └─ validation.account-name: 0ms
//	└─ book: 2ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.duration()))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	d := node.duration()
	timing := formatDuration(d)
	tree := prefix + branch
	if styles != nil {
		tree = styles.Dim(tree)
		timing = styles.Timing(timing, d >= slowStage)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", tree, node.name, timing)

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatDuration renders milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
